package foamfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

func writeList(t *testing.T, path string, rows [][]float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	vecs := make([]domain.Vector, len(rows))
	for i, r := range rows {
		vecs[i] = domain.Vector{r[0], r[1], r[2]}
	}
	if err := writeVectorFile(path, Header{Class: "vectorField", Object: filepath.Base(path)}, vecs); err != nil {
		t.Fatal(err)
	}
}

func TestReader_SampledLayout(t *testing.T) {
	base, err := os.MkdirTemp("", "foamfile_sampled")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(base) }()

	raw := shuffledGrid()
	writeList(t, filepath.Join(base, "0.5", "inlet", "faceCentres"), raw)
	writeList(t, filepath.Join(base, "0.5", "inlet", "vectorField", "U"), velocityOf(raw))
	writeList(t, filepath.Join(base, "10", "inlet", "vectorField", "U"), velocityOf(raw))
	// Sampled before the solver wrote U.
	if err := os.MkdirAll(filepath.Join(base, "2", "inlet"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "constant"), 0750); err != nil {
		t.Fatal(err)
	}

	r := NewReader(base, "inlet", LayoutSampled, domain.StructuredOptions{})
	defer func() { _ = r.Close() }()
	ctx := context.Background()

	times, err := r.Times(ctx)
	if err != nil {
		t.Fatalf("Times failed: %v", err)
	}
	want := []string{"0.5", "2", "10"}
	if len(times) != len(want) {
		t.Fatalf("expected times %v, got %v", want, times)
	}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("expected times %v, got %v", want, times)
		}
	}

	points, err := r.ReadPoints(ctx)
	if err != nil {
		t.Fatalf("ReadPoints failed: %v", err)
	}
	if points.Len() != 6 {
		t.Errorf("expected 6 points, got %d", points.Len())
	}

	u, err := r.ReadVelocity(ctx, 2)
	if err != nil {
		t.Fatalf("ReadVelocity failed: %v", err)
	}
	if err := u.CheckShape(points); err != nil {
		t.Fatal(err)
	}

	if _, err := r.ReadVelocity(ctx, 1); !errors.Is(err, port.ErrFieldNotSampled) {
		t.Errorf("expected ErrFieldNotSampled, got %v", err)
	}
	if _, err := r.ReadVelocity(ctx, 3); !errors.Is(err, port.ErrPositionOutOfRange) {
		t.Errorf("expected ErrPositionOutOfRange, got %v", err)
	}
}

func TestReader_NoSamples(t *testing.T) {
	base, err := os.MkdirTemp("", "foamfile_empty")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(base) }()

	r := NewReader(base, "inlet", LayoutSampled, domain.StructuredOptions{})
	if _, err := r.Times(context.Background()); !errors.Is(err, port.ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
	if _, err := r.ReadPoints(context.Background()); !errors.Is(err, port.ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples from ReadPoints, got %v", err)
	}
}

func TestBoundaryDataWriter_ReadBack(t *testing.T) {
	dir, err := os.MkdirTemp("", "foamfile_boundary")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	raw := shuffledGrid()
	points, err := StructurePoints(raw, domain.StructuredOptions{})
	if err != nil {
		t.Fatal(err)
	}
	field, err := StructureVelocity(velocityOf(raw), points, domain.StructuredOptions{})
	if err != nil {
		t.Fatal(err)
	}

	w := NewBoundaryDataWriter(dir, "inlet")
	if w.Kind() != WriterKind || !w.Resumable() {
		t.Fatalf("unexpected writer kind %q resumable=%v", w.Kind(), w.Resumable())
	}
	ctx := context.Background()
	if err := w.Prepare(ctx, points, 2); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	for pos, label := range []string{"0", "0.25"} {
		if err := w.Write(ctx, port.Sample{Position: pos, Label: label, Field: field}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	wantRoot := filepath.Join(dir, "constant", "boundaryData", "inlet")
	if w.Path() != wantRoot {
		t.Errorf("expected path %s, got %s", wantRoot, w.Path())
	}
	if _, err := os.Stat(filepath.Join(wantRoot, "0.25", "U.tmp")); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	r := NewReader(wantRoot, "", LayoutBoundaryData, domain.StructuredOptions{})
	times, err := r.Times(ctx)
	if err != nil {
		t.Fatalf("Times failed: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 times, got %v", times)
	}

	got, err := r.ReadVelocity(ctx, 1)
	if err != nil {
		t.Fatalf("ReadVelocity failed: %v", err)
	}
	rows, cols := field.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if got.At(i, j) != field.At(i, j) {
				t.Errorf("U(%d,%d): expected %v, got %v", i, j, field.At(i, j), got.At(i, j))
			}
		}
	}
}

func TestGeometryReader(t *testing.T) {
	dir, err := os.MkdirTemp("", "foamfile_geometry")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "faceCentres")
	writeList(t, path, shuffledGrid())

	g := NewGeometryReader(path, domain.StructuredOptions{AddValBot: float64p(0)})
	p, err := g.ReadGeometry(context.Background())
	if err != nil {
		t.Fatalf("ReadGeometry failed: %v", err)
	}
	if rows, _ := p.Dims(); rows != 3 {
		t.Errorf("expected 3 rows with the wall row, got %d", rows)
	}

	if _, err := NewGeometryReader(filepath.Join(dir, "missing"), domain.StructuredOptions{}).ReadGeometry(context.Background()); err == nil {
		t.Error("expected error for missing geometry file")
	}
}
