package service

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/pkg/interp"
)

var (
	ErrInvalidInput = errors.New("invalid rescaling input")
	ErrNegativeMean = errors.New("rescaled mean streamwise velocity is negative")
)

// Scaled is one wall-normal column of a grid in boundary layer units, plus
// the spanwise coordinates of a row.
type Scaled struct {
	Eta   []float64
	YPlus []float64
	Z     []float64
}

// LundParams holds everything the rescaling needs besides the sampled data.
// Blending is given in the inflow row order, like Inflow.Eta. NInfl counts
// the inflow rows inside the boundary layer starting from the wall.
type LundParams struct {
	Precursor Scaled
	Inflow    Scaled
	NInfl     int
	Gamma     float64
	Blending  []float64
	U0Infl    float64
	U0Prec    float64
}

// LundSetup describes both boundary layers and where their walls are.
type LundSetup struct {
	Precursor      domain.BoundaryLayer
	Inflow         domain.BoundaryLayer
	PrecursorWallY float64
	InflowWallY    float64
}

// NewLundParams derives the rescaling parameters from the two grids.
func NewLundParams(s LundSetup, prec, infl *domain.StructuredPoints) (LundParams, error) {
	if err := errors.Join(s.Precursor.Validate(), s.Inflow.Validate()); err != nil {
		return LundParams{}, err
	}

	precDist := wallDistance(prec.RowY(), s.PrecursorWallY)
	inflDist := wallDistance(infl.RowY(), s.InflowWallY)
	p := LundParams{
		Precursor: Scaled{Eta: s.Precursor.Eta(precDist), YPlus: s.Precursor.YPlus(precDist), Z: mat.Row(nil, 0, prec.Z)},
		Inflow:    Scaled{Eta: s.Inflow.Eta(inflDist), YPlus: s.Inflow.YPlus(inflDist), Z: mat.Row(nil, 0, infl.Z)},
		Gamma:     domain.Gamma(s.Inflow, s.Precursor),
		U0Infl:    s.Inflow.U0,
		U0Prec:    s.Precursor.U0,
	}
	if len(p.Inflow.Eta) < 2 {
		return LundParams{}, fmt.Errorf("%w: inflow grid needs at least two rows", ErrInvalidInput)
	}

	etaWall, flip := wallFirst(p.Inflow.Eta)
	p.NInfl = domain.CountInside(etaWall, 1)
	if p.NInfl == 0 {
		return LundParams{}, fmt.Errorf("%w: no inflow row lies inside the boundary layer", ErrInvalidInput)
	}
	p.Blending = domain.Blending(etaWall)
	if flip {
		floats.Reverse(p.Blending)
	}
	return p, nil
}

// RescaleMeanVelocity maps the precursor mean profile onto the inflow rows.
// Inner and outer scalings are blended with the Lund weight; rows past the
// boundary layer edge repeat the value at the edge. The profile is
// broadcast across the spanwise direction.
func RescaleMeanVelocity(p LundParams, meanUX, meanUY []float64) (*mat.Dense, *mat.Dense, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	if p.U0Infl <= 0 || p.U0Prec <= 0 {
		return nil, nil, fmt.Errorf("%w: free-stream velocities must be positive", ErrInvalidInput)
	}
	if len(meanUX) != len(p.Precursor.Eta) || len(meanUY) != len(p.Precursor.Eta) {
		return nil, nil, fmt.Errorf("%w: mean profile has %d/%d rows, precursor grid %d",
			ErrInvalidInput, len(meanUX), len(meanUY), len(p.Precursor.Eta))
	}

	eta, yPlus, w, flip := p.inflowWallFirst()

	ux, err := blendProfile(p.Precursor, meanUX, eta, yPlus, w, p.NInfl, p.Gamma, p.U0Infl-p.Gamma*p.U0Prec)
	if err != nil {
		return nil, nil, err
	}
	uy, err := blendProfile(p.Precursor, meanUY, eta, yPlus, w, p.NInfl, 1, 0)
	if err != nil {
		return nil, nil, err
	}
	for i, v := range ux {
		if v < 0 {
			return nil, nil, fmt.Errorf("%w: %g at row %d", ErrNegativeMean, v, i)
		}
	}
	if flip {
		floats.Reverse(ux)
		floats.Reverse(uy)
	}

	nz := len(p.Inflow.Z)
	return broadcast(ux, nz), broadcast(uy, nz), nil
}

// RescaleFluctuations maps one precursor fluctuation field onto the inflow
// grid. Spanwise positions are normalised by the last z of a row, so the
// two patches may have different widths. Rows outside the boundary layer
// get no fluctuations.
func RescaleFluctuations(p LundParams, prime *domain.VectorField) (*domain.VectorField, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	rows, cols := prime.Dims()
	if rows != len(p.Precursor.Eta) || cols != len(p.Precursor.Z) {
		return nil, fmt.Errorf("%w: fluctuations %dx%d, precursor grid %dx%d",
			domain.ErrShapeMismatch, rows, cols, len(p.Precursor.Eta), len(p.Precursor.Z))
	}

	zPrec, err := normalizeSpan(p.Precursor.Z)
	if err != nil {
		return nil, err
	}
	zInfl, err := normalizeSpan(p.Inflow.Z)
	if err != nil {
		return nil, err
	}

	etaPrec, yPlusPrec := p.Precursor.Eta, p.Precursor.YPlus
	precFlip := etaPrec[0] > etaPrec[len(etaPrec)-1]
	if precFlip {
		etaPrec, yPlusPrec = reversed(etaPrec), reversed(yPlusPrec)
	}
	eta, yPlus, w, flip := p.inflowWallFirst()

	out, err := domain.NewVectorField(len(p.Inflow.Eta), len(p.Inflow.Z))
	if err != nil {
		return nil, err
	}
	src := prime.Components()
	dst := out.Components()
	for c := range src {
		values := src[c]
		if precFlip {
			values = mat.DenseCopyOf(values)
			domain.FlipRows(values)
		}
		outer, err := interp.NewBilinear(zPrec, etaPrec, values)
		if err != nil {
			return nil, fmt.Errorf("%w: precursor eta: %v", ErrInvalidInput, err)
		}
		inner, err := interp.NewBilinear(zPrec, yPlusPrec, values)
		if err != nil {
			return nil, fmt.Errorf("%w: precursor y+: %v", ErrInvalidInput, err)
		}

		for i := 0; i < p.NInfl; i++ {
			for j, z := range zInfl {
				v := p.Gamma*inner.At(z, yPlus[i])*(1-w[i]) + p.Gamma*outer.At(z, eta[i])*w[i]
				dst[c].Set(i, j, v)
			}
		}
	}
	if flip {
		out.FlipRows()
	}
	return out, nil
}

func (p LundParams) validate() error {
	var errs []error
	if p.NInfl <= 0 || p.NInfl > len(p.Inflow.Eta) {
		errs = append(errs, fmt.Errorf("nInfl %d outside 1..%d", p.NInfl, len(p.Inflow.Eta)))
	}
	if !(p.Gamma > 0) {
		errs = append(errs, fmt.Errorf("gamma must be positive, got %g", p.Gamma))
	}
	if len(p.Inflow.Eta) < 2 || len(p.Inflow.YPlus) != len(p.Inflow.Eta) {
		errs = append(errs, fmt.Errorf("inflow eta/y+ have %d/%d rows", len(p.Inflow.Eta), len(p.Inflow.YPlus)))
	}
	if len(p.Precursor.Eta) < 2 || len(p.Precursor.YPlus) != len(p.Precursor.Eta) {
		errs = append(errs, fmt.Errorf("precursor eta/y+ have %d/%d rows", len(p.Precursor.Eta), len(p.Precursor.YPlus)))
	}
	if len(p.Blending) != len(p.Inflow.Eta) {
		errs = append(errs, fmt.Errorf("blending has %d rows, inflow %d", len(p.Blending), len(p.Inflow.Eta)))
	}
	if len(p.Inflow.Z) == 0 {
		errs = append(errs, errors.New("inflow has no spanwise points"))
	}
	for name, vs := range map[string][]float64{
		"precursor eta": p.Precursor.Eta, "precursor y+": p.Precursor.YPlus,
		"inflow eta": p.Inflow.Eta, "inflow y+": p.Inflow.YPlus,
	} {
		if floats.HasNaN(vs) || (len(vs) > 0 && floats.Min(vs) < 0) {
			errs = append(errs, fmt.Errorf("%s must be non-negative", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// inflowWallFirst returns the inflow columns ordered from the wall and
// whether they had to be reversed.
func (p LundParams) inflowWallFirst() (eta, yPlus, blending []float64, flip bool) {
	eta, flip = wallFirst(p.Inflow.Eta)
	if !flip {
		return eta, p.Inflow.YPlus, p.Blending, false
	}
	return eta, reversed(p.Inflow.YPlus), reversed(p.Blending), true
}

func blendProfile(prec Scaled, mean, eta, yPlus, w []float64, nInfl int, scale, shift float64) ([]float64, error) {
	outer, err := interp.NewLinear(prec.Eta, mean)
	if err != nil {
		return nil, fmt.Errorf("%w: precursor eta: %v", ErrInvalidInput, err)
	}
	inner, err := interp.NewLinear(prec.YPlus, mean)
	if err != nil {
		return nil, fmt.Errorf("%w: precursor y+: %v", ErrInvalidInput, err)
	}

	in := inner.Eval(yPlus[:nInfl])
	ou := outer.Eval(eta[:nInfl])
	out := make([]float64, len(eta))
	for i := 0; i < nInfl; i++ {
		out[i] = scale*in[i]*(1-w[i]) + (scale*ou[i]+shift)*w[i]
	}
	for i := nInfl; i < len(out); i++ {
		out[i] = out[nInfl-1]
	}
	return out, nil
}

func wallDistance(y []float64, wallY float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = math.Abs(v - wallY)
	}
	return out
}

// wallFirst reports whether the wall is at the top, i.e. eta decreases
// along the rows, and returns eta ordered from the wall.
func wallFirst(eta []float64) ([]float64, bool) {
	if len(eta) > 1 && eta[0] > eta[1] {
		return reversed(eta), true
	}
	return eta, false
}

func normalizeSpan(z []float64) ([]float64, error) {
	last := z[len(z)-1]
	if last == 0 {
		return nil, fmt.Errorf("%w: last spanwise coordinate is zero", ErrInvalidInput)
	}
	out := make([]float64, len(z))
	floats.ScaleTo(out, 1/last, z)
	return out, nil
}

func reversed(v []float64) []float64 {
	out := append([]float64(nil), v...)
	floats.Reverse(out)
	return out
}

func broadcast(col []float64, cols int) *mat.Dense {
	m := mat.NewDense(len(col), cols, nil)
	for i, v := range col {
		for j := 0; j < cols; j++ {
			m.Set(i, j, v)
		}
	}
	return m
}
