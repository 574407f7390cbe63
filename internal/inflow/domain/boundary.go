package domain

import (
	"errors"
	"fmt"
)

// ErrPerturbNonZero is returned for a non-zero perturb setting, which makes
// the solver jitter the point locations before mapping.
var ErrPerturbNonZero = errors.New("perturb must be 0")

// BoundaryCondition holds the solver-side settings of the mapped inflow patch.
type BoundaryCondition struct {
	Offset     Vector  `json:"offset" yaml:"offset"`
	SetAverage bool    `json:"setAverage" yaml:"setAverage"`
	Perturb    float64 `json:"perturb" yaml:"perturb"`
}

func (b BoundaryCondition) Validate() error {
	if b.Perturb != 0 {
		return fmt.Errorf("%w, got %g", ErrPerturbNonZero, b.Perturb)
	}
	return nil
}
