package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitOpenError reports circuit-open status with a concrete retry delay.
type CircuitOpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	retryAfter := max(e.RetryAfter, 0)
	if e.Name == "" {
		return fmt.Sprintf("%v: retry in %s", ErrCircuitOpen, retryAfter)
	}
	return fmt.Sprintf("%v for %s: retry in %s", ErrCircuitOpen, e.Name, retryAfter)
}

func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

type CircuitBreakerState string

const (
	CircuitClosed   CircuitBreakerState = "closed"
	CircuitOpen     CircuitBreakerState = "open"
	CircuitHalfOpen CircuitBreakerState = "half_open"
)

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
}

// CircuitBreaker stops calling a failing dependency for OpenTimeout after
// FailureThreshold consecutive failures. One trial call is let through
// once the timeout expires.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state        CircuitBreakerState
	failureCount int
	openUntil    time.Time
	trial        bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}

	return &CircuitBreaker{
		cfg:   cfg,
		now:   time.Now,
		state: CircuitClosed,
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshStateLocked()
	return cb.state
}

func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trial = false

	switch {
	case errors.Is(err, context.Canceled):
		// Cancellation says nothing about the dependency.
	case err != nil:
		cb.failureCount++
		if cb.state == CircuitHalfOpen || cb.failureCount >= cb.cfg.FailureThreshold {
			cb.state = CircuitOpen
			cb.openUntil = cb.now().Add(cb.cfg.OpenTimeout)
			cb.failureCount = 0
		}
	default:
		cb.state = CircuitClosed
		cb.failureCount = 0
	}
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshStateLocked()

	switch cb.state {
	case CircuitOpen:
		return &CircuitOpenError{Name: cb.cfg.Name, RetryAfter: cb.openUntil.Sub(cb.now())}
	case CircuitHalfOpen:
		if cb.trial {
			return &CircuitOpenError{Name: cb.cfg.Name}
		}
		cb.trial = true
	}
	return nil
}

func (cb *CircuitBreaker) refreshStateLocked() {
	if cb.state == CircuitOpen && !cb.now().Before(cb.openUntil) {
		cb.state = CircuitHalfOpen
		cb.trial = false
	}
}
