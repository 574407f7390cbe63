package service

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/pkg/interp"
)

// InterpolationParams maps whole precursor samples onto the inflow grid
// without Lund rescaling. Both grids are compared in outer units,
// eta = wall distance / delta99, and velocities are scaled by the ratio of
// the free-stream velocities.
type InterpolationParams struct {
	PrecursorEta []float64
	PrecursorZ   []float64
	InflowEta    []float64
	InflowZ      []float64
	Scale        float64
}

// NewInterpolationParams derives the interpolation parameters from the two
// grids. Only delta99 and U0 of the boundary layers are used.
func NewInterpolationParams(s LundSetup, prec, infl *domain.StructuredPoints) (InterpolationParams, error) {
	var errs []error
	if s.Precursor.Delta99 <= 0 || s.Precursor.U0 <= 0 {
		errs = append(errs, fmt.Errorf("%w: precursor delta99 and u0 must be positive", domain.ErrInvalidScaling))
	}
	if s.Inflow.Delta99 <= 0 || s.Inflow.U0 <= 0 {
		errs = append(errs, fmt.Errorf("%w: inflow delta99 and u0 must be positive", domain.ErrInvalidScaling))
	}
	if err := errors.Join(errs...); err != nil {
		return InterpolationParams{}, err
	}

	p := InterpolationParams{
		PrecursorEta: s.Precursor.Eta(wallDistance(prec.RowY(), s.PrecursorWallY)),
		PrecursorZ:   mat.Row(nil, 0, prec.Z),
		InflowEta:    s.Inflow.Eta(wallDistance(infl.RowY(), s.InflowWallY)),
		InflowZ:      mat.Row(nil, 0, infl.Z),
		Scale:        s.Inflow.U0 / s.Precursor.U0,
	}
	if len(p.PrecursorEta) < 2 || len(p.PrecursorZ) < 2 {
		return InterpolationParams{}, fmt.Errorf("%w: precursor grid needs at least two rows and columns", ErrInvalidInput)
	}
	if len(p.InflowEta) == 0 || len(p.InflowZ) == 0 {
		return InterpolationParams{}, fmt.Errorf("%w: empty inflow grid", ErrInvalidInput)
	}
	return p, nil
}

// Interpolate evaluates one precursor sample on the inflow grid. Inflow
// points outside the precursor grid take the value at its nearest edge.
func Interpolate(p InterpolationParams, u *domain.VectorField) (*domain.VectorField, error) {
	rows, cols := u.Dims()
	if rows != len(p.PrecursorEta) || cols != len(p.PrecursorZ) {
		return nil, fmt.Errorf("%w: sample %dx%d, precursor grid %dx%d",
			domain.ErrShapeMismatch, rows, cols, len(p.PrecursorEta), len(p.PrecursorZ))
	}
	zPrec, err := normalizeSpan(p.PrecursorZ)
	if err != nil {
		return nil, err
	}
	zInfl, err := normalizeSpan(p.InflowZ)
	if err != nil {
		return nil, err
	}

	eta, flip := wallFirst(p.PrecursorEta)
	out, err := domain.NewVectorField(len(p.InflowEta), len(p.InflowZ))
	if err != nil {
		return nil, err
	}
	dst := out.Components()
	for c, values := range u.Components() {
		if flip {
			values = mat.DenseCopyOf(values)
			domain.FlipRows(values)
		}
		b, err := interp.NewBilinear(zPrec, eta, values)
		if err != nil {
			return nil, fmt.Errorf("%w: precursor grid: %v", ErrInvalidInput, err)
		}
		dst[c].Scale(p.Scale, b.Grid(zInfl, p.InflowEta))
	}
	return out, nil
}
