// Package interp provides clamped linear interpolation on 1d and 2d
// rectilinear data.
package interp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewPoints   = errors.New("interpolation needs at least two points")
	ErrLengthMismatch = errors.New("abscissa and ordinate lengths differ")
	ErrNotIncreasing  = errors.New("abscissa must be strictly increasing")
)

// Linear is a piecewise linear interpolant that holds the end values
// outside the data range.
type Linear struct {
	pl   interp.PiecewiseLinear
	xMin float64
	xMax float64
	yMin float64
	yMax float64
}

// NewLinear fits xs, ys. xs may be increasing or decreasing; decreasing data
// is reversed before fitting.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}

	x := append([]float64(nil), xs...)
	y := append([]float64(nil), ys...)
	if x[0] > x[len(x)-1] {
		floats.Reverse(x)
		floats.Reverse(y)
	}
	if !strictlyIncreasing(x) {
		return nil, ErrNotIncreasing
	}

	l := &Linear{xMin: x[0], xMax: x[len(x)-1], yMin: y[0], yMax: y[len(y)-1]}
	if err := l.pl.Fit(x, y); err != nil {
		return nil, fmt.Errorf("failed to fit interpolant: %w", err)
	}
	return l, nil
}

// At evaluates the interpolant at x.
func (l *Linear) At(x float64) float64 {
	switch {
	case x <= l.xMin:
		return l.yMin
	case x >= l.xMax:
		return l.yMax
	}
	return l.pl.Predict(x)
}

// Eval evaluates the interpolant at every x.
func (l *Linear) Eval(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = l.At(x)
	}
	return out
}

func strictlyIncreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return false
		}
	}
	return true
}
