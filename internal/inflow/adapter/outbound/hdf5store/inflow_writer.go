package hdf5store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// WriterKind is the writer type handled by InflowWriter.
const WriterKind = "hdf5"

// DatasetNames are the dataset names timeVaryingMappedHDF5FixedValue looks up.
type DatasetNames struct {
	Points string `json:"points" yaml:"points"`
	Times  string `json:"times" yaml:"times"`
	Values string `json:"values" yaml:"values"`
}

func DefaultDatasetNames() DatasetNames {
	return DatasetNames{Points: "points", Times: "time", Values: "velocity"}
}

// InflowWriter writes the generated inflow into a single HDF5 file:
// points (N x 3), time (nT) and velocity (nT x N x 3). Samples are kept in
// memory until Close, which only writes the file once every step arrived.
type InflowWriter struct {
	path  string
	names DatasetNames
	buf   sampleBuffer
}

var _ port.FieldWriter = (*InflowWriter)(nil)

// WithDefaults fills empty names from DefaultDatasetNames.
func (n DatasetNames) WithDefaults() DatasetNames {
	def := DefaultDatasetNames()
	if n.Points == "" {
		n.Points = def.Points
	}
	if n.Times == "" {
		n.Times = def.Times
	}
	if n.Values == "" {
		n.Values = def.Values
	}
	return n
}

func NewInflowWriter(path string, names DatasetNames) *InflowWriter {
	return &InflowWriter{path: path, names: names.WithDefaults()}
}

func (w *InflowWriter) Kind() string {
	return WriterKind
}

func (w *InflowWriter) Path() string {
	return w.path
}

func (w *InflowWriter) Prepare(_ context.Context, points *domain.StructuredPoints, steps int) error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}
	return w.buf.prepare(points, steps)
}

func (w *InflowWriter) Write(ctx context.Context, sample port.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.buf.store(sample)
}

func (w *InflowWriter) Resumable() bool {
	return false
}

func (w *InflowWriter) Close() error {
	steps, n, written := w.buf.snapshot()
	if steps == 0 {
		return nil
	}
	// A partial file would have zero times at the missing positions, so an
	// earlier complete file is left in place instead.
	if written < steps {
		return fmt.Errorf("%w: %d of %d samples written", ErrCorrupt, written, steps)
	}

	w.buf.mu.Lock()
	defer w.buf.mu.Unlock()
	points := make([]float64, 0, n*3)
	for _, p := range w.buf.points.Flatten() {
		points = append(points, p[0], p[1], p[2])
	}
	return writeDatasets(w.path, []dataset{
		{name: w.names.Points, dims: []uint64{uint64(n), 3}, data: points},
		{name: w.names.Times, dims: []uint64{uint64(steps)}, data: w.buf.times},
		{name: w.names.Values, dims: []uint64{uint64(steps), uint64(n), 3}, data: w.buf.velocity},
	})
}
