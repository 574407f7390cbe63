package foamfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// WriterKind is the writer type handled by BoundaryDataWriter.
const WriterKind = "ofnative"

// BoundaryDataWriter writes inflow fields in the layout read by OpenFOAM's
// timeVaryingMappedFixedValue boundary condition:
// <path>/constant/boundaryData/<patch>/points and .../<time>/U.
type BoundaryDataWriter struct {
	root string
}

var _ port.FieldWriter = (*BoundaryDataWriter)(nil)

func NewBoundaryDataWriter(casePath, patch string) *BoundaryDataWriter {
	return &BoundaryDataWriter{
		root: filepath.Join(filepath.Clean(casePath), "constant", "boundaryData", patch),
	}
}

func (w *BoundaryDataWriter) Kind() string {
	return WriterKind
}

func (w *BoundaryDataWriter) Path() string {
	return w.root
}

func (w *BoundaryDataWriter) Prepare(_ context.Context, points *domain.StructuredPoints, _ int) error {
	if err := os.MkdirAll(w.root, 0750); err != nil {
		return fmt.Errorf("failed to create boundary data dir: %w", err)
	}
	return writeVectorFile(filepath.Join(w.root, "points"), Header{Class: "vectorField", Object: "points"}, points.Flatten())
}

func (w *BoundaryDataWriter) Write(ctx context.Context, sample port.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Join(w.root, sample.Label)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create time dir %s: %w", sample.Label, err)
	}

	values := sample.Field.Flatten()
	avg := Average(values)
	return writeVectorFile(filepath.Join(dir, "U"), Header{Class: "vectorAverageField", Object: "values", Average: &avg}, values)
}

func (w *BoundaryDataWriter) Resumable() bool {
	return true
}

func (w *BoundaryDataWriter) Close() error {
	return nil
}

// writeVectorFile writes through a temporary file so an interrupted run never
// leaves a truncated field behind.
func writeVectorFile(path string, h Header, vecs []domain.Vector) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640) // #nosec G304
	if err != nil {
		return err
	}
	if err := WriteVectors(f, h, vecs); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
