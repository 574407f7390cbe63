package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch = errors.New("field shape mismatch")
	ErrEmptyField    = errors.New("field is empty")
)

// Vector is a point or velocity value with x, y and z components.
type Vector [3]float64

// StructuredPoints holds face centres of a patch arranged on a rectilinear
// grid. Rows run along the wall-normal (y) direction, columns along the
// spanwise (z) direction.
type StructuredPoints struct {
	// X is the patch-normal coordinate shared by all face centres.
	X float64
	Y *mat.Dense
	Z *mat.Dense

	// YInd is the permutation that sorts the raw points by y.
	YInd []int
	// ZInd holds, per row, the permutation that sorts that row by z.
	ZInd [][]int
}

// Dims returns the number of rows and columns of the grid.
func (p *StructuredPoints) Dims() (int, int) {
	return p.Y.Dims()
}

// Len returns the number of points in the grid.
func (p *StructuredPoints) Len() int {
	r, c := p.Dims()
	return r * c
}

// RowY returns the y coordinate of every row, taken from the first column.
func (p *StructuredPoints) RowY() []float64 {
	r, _ := p.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = p.Y.At(i, 0)
	}
	return out
}

// Flatten returns the points in row-major order as 3d vectors.
func (p *StructuredPoints) Flatten() []Vector {
	r, c := p.Dims()
	out := make([]Vector, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, Vector{p.X, p.Y.At(i, j), p.Z.At(i, j)})
		}
	}
	return out
}

// VectorField is a velocity field sampled on a StructuredPoints grid.
type VectorField struct {
	UX *mat.Dense
	UY *mat.Dense
	UZ *mat.Dense
}

// NewVectorField allocates a zero field with the given shape.
func NewVectorField(rows, cols int) (*VectorField, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyField, rows, cols)
	}
	return &VectorField{
		UX: mat.NewDense(rows, cols, nil),
		UY: mat.NewDense(rows, cols, nil),
		UZ: mat.NewDense(rows, cols, nil),
	}, nil
}

// Dims returns the number of rows and columns of the field.
func (f *VectorField) Dims() (int, int) {
	return f.UX.Dims()
}

// Components returns the three component grids in x, y, z order.
func (f *VectorField) Components() [3]*mat.Dense {
	return [3]*mat.Dense{f.UX, f.UY, f.UZ}
}

// At returns the velocity vector at row i, column j.
func (f *VectorField) At(i, j int) Vector {
	return Vector{f.UX.At(i, j), f.UY.At(i, j), f.UZ.At(i, j)}
}

// Flatten returns the velocity in row-major order.
func (f *VectorField) Flatten() []Vector {
	r, c := f.Dims()
	out := make([]Vector, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, f.At(i, j))
		}
	}
	return out
}

// CheckShape verifies that the field matches the grid.
func (f *VectorField) CheckShape(p *StructuredPoints) error {
	fr, fc := f.Dims()
	pr, pc := p.Dims()
	if fr != pr || fc != pc {
		return fmt.Errorf("%w: field %dx%d, points %dx%d", ErrShapeMismatch, fr, fc, pr, pc)
	}
	return nil
}

// FlipRows reverses the row order of every component in place.
func (f *VectorField) FlipRows() {
	for _, m := range f.Components() {
		FlipRows(m)
	}
}

// FlipRows reverses the row order of m in place.
func FlipRows(m *mat.Dense) {
	r, _ := m.Dims()
	for i, k := 0, r-1; i < k; i, k = i+1, k-1 {
		top := mat.Row(nil, i, m)
		m.SetRow(i, mat.Row(nil, k, m))
		m.SetRow(k, top)
	}
}
