// Package arrowipc writes generated inflow fields as an Arrow IPC stream for
// post-processing outside OpenFOAM.
package arrowipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const (
	// WriterKind is the writer type handled by Writer.
	WriterKind = "arrow"
	// FileName is the stream file created below the writer path.
	FileName = "inflow.arrows"
)

var ErrNotPrepared = errors.New("arrow writer used before prepare")

// Schema returns the record layout: one row per point and time step.
//
// Fields:
//   - time: simulation time of the sample
//   - index: position of the sample in the run
//   - point_index: row-major index of the point on the grid
//   - x, y, z: point coordinates
//   - ux, uy, uz: velocity
func Schema() *arrow.Schema {
	return arrow.NewSchema(
		[]arrow.Field{
			{Name: "time", Type: arrow.PrimitiveTypes.Float64},
			{Name: "index", Type: arrow.PrimitiveTypes.Int32},
			{Name: "point_index", Type: arrow.PrimitiveTypes.Int32},
			{Name: "x", Type: arrow.PrimitiveTypes.Float64},
			{Name: "y", Type: arrow.PrimitiveTypes.Float64},
			{Name: "z", Type: arrow.PrimitiveTypes.Float64},
			{Name: "ux", Type: arrow.PrimitiveTypes.Float64},
			{Name: "uy", Type: arrow.PrimitiveTypes.Float64},
			{Name: "uz", Type: arrow.PrimitiveTypes.Float64},
		},
		nil,
	)
}

// Writer appends one record batch per sample to an IPC stream.
type Writer struct {
	dir       string
	allocator memory.Allocator
	schema    *arrow.Schema

	mu     sync.Mutex
	file   *os.File
	ipc    *ipc.Writer
	points []domain.Vector
}

var _ port.FieldWriter = (*Writer)(nil)

func NewWriter(dir string) *Writer {
	return &Writer{
		dir:       dir,
		allocator: memory.DefaultAllocator,
		schema:    Schema(),
	}
}

func (w *Writer) Kind() string {
	return WriterKind
}

func (w *Writer) Path() string {
	return filepath.Join(w.dir, FileName)
}

func (w *Writer) Prepare(_ context.Context, points *domain.StructuredPoints, _ int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(w.Path()) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	w.file = f
	w.ipc = ipc.NewWriter(f, ipc.WithSchema(w.schema), ipc.WithAllocator(w.allocator))
	w.points = points.Flatten()
	return nil
}

func (w *Writer) Write(ctx context.Context, sample port.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values := sample.Field.Flatten()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ipc == nil {
		return ErrNotPrepared
	}
	if len(values) != len(w.points) {
		return fmt.Errorf("%w: %d values for %d points", domain.ErrShapeMismatch, len(values), len(w.points))
	}

	record := w.buildRecord(sample, values)
	defer record.Release()

	if err := w.ipc.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", sample.Position, err)
	}
	return nil
}

func (w *Writer) Resumable() bool {
	return false
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ipc == nil {
		return nil
	}

	err := w.ipc.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.ipc, w.file = nil, nil
	if err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (w *Writer) buildRecord(sample port.Sample, values []domain.Vector) arrow.Record {
	builder := array.NewRecordBuilder(w.allocator, w.schema)
	defer builder.Release()

	timeBuilder := builder.Field(0).(*array.Float64Builder)
	indexBuilder := builder.Field(1).(*array.Int32Builder)
	pointBuilder := builder.Field(2).(*array.Int32Builder)
	coords := [3]*array.Float64Builder{
		builder.Field(3).(*array.Float64Builder),
		builder.Field(4).(*array.Float64Builder),
		builder.Field(5).(*array.Float64Builder),
	}
	velocity := [3]*array.Float64Builder{
		builder.Field(6).(*array.Float64Builder),
		builder.Field(7).(*array.Float64Builder),
		builder.Field(8).(*array.Float64Builder),
	}

	n := len(values)
	timeBuilder.Reserve(n)
	indexBuilder.Reserve(n)
	pointBuilder.Reserve(n)
	for i, u := range values {
		timeBuilder.Append(sample.Time)
		indexBuilder.Append(int32(sample.Position))
		pointBuilder.Append(int32(i))
		for k := 0; k < 3; k++ {
			coords[k].Append(w.points[i][k])
			velocity[k].Append(u[k])
		}
	}

	return builder.NewRecord()
}
