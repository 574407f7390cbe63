package hdf5store

import (
	"fmt"
	"sync"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// sampleBuffer collects every sample of a run in memory. Positions own
// disjoint slices of velocity, so writers only lock to flip bookkeeping.
type sampleBuffer struct {
	mu       sync.Mutex
	points   *domain.StructuredPoints
	rows     int
	cols     int
	times    []float64
	velocity []float64
	written  int
}

func (b *sampleBuffer) prepare(points *domain.StructuredPoints, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("%w: %d steps", domain.ErrEmptyField, steps)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points = points
	b.rows, b.cols = points.Dims()
	b.times = make([]float64, steps)
	b.velocity = make([]float64, steps*b.rows*b.cols*3)
	b.written = 0
	return nil
}

func (b *sampleBuffer) store(sample port.Sample) error {
	b.mu.Lock()
	prepared := b.points != nil
	steps := len(b.times)
	b.mu.Unlock()

	if !prepared {
		return ErrNotPrepared
	}
	if sample.Position < 0 || sample.Position >= steps {
		return fmt.Errorf("%w: %d of %d steps", port.ErrPositionOutOfRange, sample.Position, steps)
	}
	if err := sample.Field.CheckShape(b.points); err != nil {
		return err
	}

	n := b.rows * b.cols
	dst := b.velocity[sample.Position*n*3 : (sample.Position+1)*n*3]
	for k, v := range sample.Field.Flatten() {
		dst[3*k], dst[3*k+1], dst[3*k+2] = v[0], v[1], v[2]
	}

	b.mu.Lock()
	b.times[sample.Position] = sample.Time
	b.written++
	b.mu.Unlock()
	return nil
}

func (b *sampleBuffer) snapshot() (steps, n, written int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.times), b.rows * b.cols, b.written
}
