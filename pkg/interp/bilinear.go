package interp

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Bilinear interpolates values given on a rectilinear grid. Values has one
// row per entry of ys and one column per entry of xs. Queries outside the
// grid take the value of the nearest edge.
type Bilinear struct {
	xs     []float64
	ys     []float64
	values *mat.Dense
}

// NewBilinear builds an interpolant over the grid xs × ys.
func NewBilinear(xs, ys []float64, values mat.Matrix) (*Bilinear, error) {
	r, c := values.Dims()
	if r != len(ys) || c != len(xs) {
		return nil, fmt.Errorf("%w: grid %dx%d, values %dx%d", ErrLengthMismatch, len(ys), len(xs), r, c)
	}
	if len(xs) < 2 || len(ys) < 2 {
		return nil, ErrTooFewPoints
	}
	if !strictlyIncreasing(xs) || !strictlyIncreasing(ys) {
		return nil, ErrNotIncreasing
	}

	return &Bilinear{
		xs:     append([]float64(nil), xs...),
		ys:     append([]float64(nil), ys...),
		values: mat.DenseCopyOf(values),
	}, nil
}

// At evaluates the interpolant at (x, y).
func (b *Bilinear) At(x, y float64) float64 {
	i, ty := locate(b.ys, y)
	j, tx := locate(b.xs, x)

	v00 := b.values.At(i, j)
	v01 := b.values.At(i, j+1)
	v10 := b.values.At(i+1, j)
	v11 := b.values.At(i+1, j+1)

	bottom := v00 + tx*(v01-v00)
	top := v10 + tx*(v11-v10)
	return bottom + ty*(top-bottom)
}

// Grid evaluates the interpolant on the outer product of xs and ys. The
// result has one row per entry of ys.
func (b *Bilinear) Grid(xs, ys []float64) *mat.Dense {
	out := mat.NewDense(len(ys), len(xs), nil)
	for i, y := range ys {
		for j, x := range xs {
			out.Set(i, j, b.At(x, y))
		}
	}
	return out
}

// locate returns the lower cell index for v and the fractional position
// inside that cell, clamped to [0, 1].
func locate(grid []float64, v float64) (int, float64) {
	last := len(grid) - 1
	switch {
	case v <= grid[0]:
		return 0, 0
	case v >= grid[last]:
		return last - 1, 1
	}

	k := sort.SearchFloat64s(grid, v)
	// grid[k-1] < v <= grid[k]
	lo := k - 1
	return lo, (v - grid[lo]) / (grid[k] - grid[lo])
}
