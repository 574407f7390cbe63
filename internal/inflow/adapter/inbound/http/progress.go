package http_handler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const metricsNamespace = "inflowgen"

// Status is the body of GET /status.
type Status struct {
	RunID     string    `json:"run_id"`
	Total     int       `json:"total"`
	Skipped   int       `json:"skipped"`
	Done      int       `json:"done"`
	Running   bool      `json:"running"`
	Failed    bool      `json:"failed"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Elapsed   string    `json:"elapsed"`
}

// Tracker follows a generation run and exports its progress as Prometheus
// metrics on its own registry.
type Tracker struct {
	mu         sync.RWMutex
	status     Status
	finishedAt time.Time
	now        func() time.Time

	registry *prometheus.Registry
	total    prometheus.Gauge
	skipped  prometheus.Gauge
	written  prometheus.Counter
	failed   prometheus.Gauge
	duration prometheus.Gauge
}

var _ port.ProgressObserver = (*Tracker)(nil)

func NewTracker() *Tracker {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Tracker{
		now:      time.Now,
		registry: reg,
		total: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "samples_total",
			Help:      "Number of time steps in the current run",
		}),
		skipped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "samples_skipped",
			Help:      "Time steps skipped because an earlier run completed them",
		}),
		written: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_written_total",
			Help:      "Time steps written by the current run",
		}),
		failed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_failed",
			Help:      "1 when the last run failed",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last finished run",
		}),
	}
}

// Registry returns the registry the metrics live on.
func (t *Tracker) Registry() *prometheus.Registry {
	return t.registry
}

func (t *Tracker) RunStarted(runID string, total, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		RunID:     runID,
		Total:     total,
		Skipped:   skipped,
		Running:   true,
		StartedAt: t.now(),
	}
	t.finishedAt = time.Time{}
	t.total.Set(float64(total))
	t.skipped.Set(float64(skipped))
	t.failed.Set(0)
}

func (t *Tracker) SampleWritten(int) {
	t.mu.Lock()
	t.status.Done++
	t.mu.Unlock()
	t.written.Inc()
}

func (t *Tracker) RunFinished(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Running = false
	t.finishedAt = t.now()
	if err != nil {
		t.status.Failed = true
		t.status.Error = err.Error()
		t.failed.Set(1)
	}
	t.duration.Set(t.finishedAt.Sub(t.status.StartedAt).Seconds())
}

// Snapshot returns the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.status
	if s.StartedAt.IsZero() {
		return s
	}
	end := t.finishedAt
	if s.Running {
		end = t.now()
	}
	s.Elapsed = end.Sub(s.StartedAt).Round(time.Millisecond).String()
	return s
}
