package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
	"github.com/anthanhphan/go-inflow-generator/pkg/resilience"
)

// Guarded wraps a store so that its failures never fail a run. Errors are
// logged and swallowed; after repeated failures the breaker opens and the
// store is not called until the open timeout passes.
type Guarded struct {
	store   port.CheckpointStore
	breaker *resilience.CircuitBreaker
}

var _ port.CheckpointStore = (*Guarded)(nil)

func NewGuarded(store port.CheckpointStore, name string, threshold int, openTimeout time.Duration) *Guarded {
	return &Guarded{
		store: store,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             name,
			FailureThreshold: threshold,
			OpenTimeout:      openTimeout,
		}),
	}
}

// Completed returns no positions when the store is unavailable, which makes
// the run regenerate everything.
func (g *Guarded) Completed(ctx context.Context, runKey string) ([]int, error) {
	var positions []int
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		positions, err = g.store.Completed(ctx, runKey)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logger.Warnw("Checkpoint lookup failed, regenerating all samples", "run_key", runKey, "error", err.Error())
		return nil, nil
	}
	return positions, nil
}

func (g *Guarded) MarkCompleted(ctx context.Context, runKey string, position int) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.store.MarkCompleted(ctx, runKey, position)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) && !errors.Is(err, context.Canceled) {
		logger.Warnw("Failed to record checkpoint", "run_key", runKey, "position", position, "error", err.Error())
	}
	return nil
}

// State exposes the breaker state for status reporting.
func (g *Guarded) State() resilience.CircuitBreakerState {
	return g.breaker.State()
}

func (g *Guarded) Close() error {
	return g.store.Close()
}
