package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidScaling = errors.New("invalid boundary layer scaling")

// Lund blending constants.
const (
	BlendingA = 4.0
	BlendingB = 0.2
)

// BoundaryLayer carries the scales that turn wall distance into eta and y+.
type BoundaryLayer struct {
	Delta99 float64 `json:"delta99" yaml:"delta99"`
	Nu      float64 `json:"nu" yaml:"nu"`
	UTau    float64 `json:"uTau" yaml:"uTau"`
	U0      float64 `json:"u0" yaml:"u0"`
}

// Validate checks that every scale is strictly positive.
func (b BoundaryLayer) Validate() error {
	var errs []error
	if b.Delta99 <= 0 {
		errs = append(errs, fmt.Errorf("%w: delta99 must be positive, got %g", ErrInvalidScaling, b.Delta99))
	}
	if b.Nu <= 0 {
		errs = append(errs, fmt.Errorf("%w: nu must be positive, got %g", ErrInvalidScaling, b.Nu))
	}
	if b.UTau <= 0 {
		errs = append(errs, fmt.Errorf("%w: uTau must be positive, got %g", ErrInvalidScaling, b.UTau))
	}
	if b.U0 <= 0 {
		errs = append(errs, fmt.Errorf("%w: u0 must be positive, got %g", ErrInvalidScaling, b.U0))
	}
	return errors.Join(errs...)
}

// Eta returns y/delta99 for every wall distance.
func (b BoundaryLayer) Eta(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v / b.Delta99
	}
	return out
}

// YPlus returns y*uTau/nu for every wall distance.
func (b BoundaryLayer) YPlus(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v * b.UTau / b.Nu
	}
	return out
}

// Gamma is the ratio of inflow to precursor friction velocity.
func Gamma(inflow, precursor BoundaryLayer) float64 {
	return inflow.UTau / precursor.UTau
}

// Blending returns Lund's inner/outer weight for every eta. Values past the
// boundary layer edge are pinned to 1.
func Blending(eta []float64) []float64 {
	out := make([]float64, len(eta))
	for i, e := range eta {
		if e > 1 {
			out[i] = 1
			continue
		}
		w := 0.5 * (1 + math.Tanh(BlendingA*(e-BlendingB)/((1-2*BlendingB)*e+BlendingB))/math.Tanh(BlendingA))
		out[i] = math.Min(math.Max(w, 0), 1)
	}
	return out
}

// CountInside returns how many leading entries of eta lie within limit,
// walking from the wall. The slice must start at the wall.
func CountInside(eta []float64, limit float64) int {
	n := 0
	for _, e := range eta {
		if e > limit {
			break
		}
		n++
	}
	return n
}

// MeanProfile holds time and spanwise averaged statistics per grid row.
type MeanProfile struct {
	Y  []float64
	UX []float64
	UY []float64
	UZ []float64
	UU []float64
	VV []float64
	WW []float64
	UV []float64
}

// NewMeanProfile allocates a profile with n rows.
func NewMeanProfile(n int) *MeanProfile {
	return &MeanProfile{
		Y:  make([]float64, n),
		UX: make([]float64, n),
		UY: make([]float64, n),
		UZ: make([]float64, n),
		UU: make([]float64, n),
		VV: make([]float64, n),
		WW: make([]float64, n),
		UV: make([]float64, n),
	}
}

// Len returns the number of rows.
func (p *MeanProfile) Len() int {
	return len(p.Y)
}
