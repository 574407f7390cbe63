package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const tol = 1e-12

func grid(ys, zs []float64) *domain.StructuredPoints {
	y := mat.NewDense(len(ys), len(zs), nil)
	z := mat.NewDense(len(ys), len(zs), nil)
	for i, yv := range ys {
		for j, zv := range zs {
			y.Set(i, j, yv)
			z.Set(i, j, zv)
		}
	}
	return &domain.StructuredPoints{Y: y, Z: z}
}

// fieldOf evaluates fn on every point of p.
func fieldOf(t *testing.T, p *domain.StructuredPoints, fn func(y, z float64) domain.Vector) *domain.VectorField {
	t.Helper()
	rows, cols := p.Dims()
	f, err := domain.NewVectorField(rows, cols)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			u := fn(p.Y.At(i, j), p.Z.At(i, j))
			f.UX.Set(i, j, u[0])
			f.UY.Set(i, j, u[1])
			f.UZ.Set(i, j, u[2])
		}
	}
	return f
}

func assertClose(t *testing.T, what string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > tol*math.Max(1, math.Abs(want)) {
		t.Errorf("%s: expected %v, got %v", what, want, got)
	}
}

// memReader serves fields from memory. ReadVelocity returns a copy so callers
// may modify it.
type memReader struct {
	points *domain.StructuredPoints
	times  []string
	fields []*domain.VectorField
	err    map[int]error
}

func newMemReader(points *domain.StructuredPoints, fields ...*domain.VectorField) *memReader {
	times := make([]string, len(fields))
	for i := range fields {
		times[i] = strconv.FormatFloat(1000+0.01*float64(i+1), 'f', -1, 64)
	}
	return &memReader{points: points, times: times, fields: fields, err: map[int]error{}}
}

func (r *memReader) Name() string { return "memory" }

func (r *memReader) ReadPoints(context.Context) (*domain.StructuredPoints, error) {
	return r.points, nil
}

func (r *memReader) Times(context.Context) ([]string, error) {
	return r.times, nil
}

func (r *memReader) ReadVelocity(ctx context.Context, position int) (*domain.VectorField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := r.err[position]; ok {
		return nil, err
	}
	if position < 0 || position >= len(r.fields) {
		return nil, fmt.Errorf("%w: %d", port.ErrPositionOutOfRange, position)
	}
	f := r.fields[position]
	return &domain.VectorField{
		UX: mat.DenseCopyOf(f.UX),
		UY: mat.DenseCopyOf(f.UY),
		UZ: mat.DenseCopyOf(f.UZ),
	}, nil
}

func (r *memReader) Close() error { return nil }

type staticGeometry struct {
	points *domain.StructuredPoints
}

func (g staticGeometry) ReadGeometry(context.Context) (*domain.StructuredPoints, error) {
	return g.points, nil
}
