package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestVectorField(t *testing.T) {
	_, err := NewVectorField(0, 3)
	assert.ErrorIs(t, err, ErrEmptyField)

	f, err := NewVectorField(2, 2)
	require.NoError(t, err)
	f.UX.Set(0, 1, 1)
	f.UY.Set(1, 0, 2)
	f.UZ.Set(1, 1, 3)

	assert.Equal(t, []Vector{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 0, 3}}, f.Flatten())

	f.FlipRows()
	assert.Equal(t, Vector{0, 2, 0}, f.At(0, 0))
	assert.Equal(t, Vector{1, 0, 0}, f.At(1, 1))

	points := &StructuredPoints{Y: mat.NewDense(2, 2, nil), Z: mat.NewDense(2, 2, nil)}
	assert.NoError(t, f.CheckShape(points))

	points = &StructuredPoints{Y: mat.NewDense(3, 2, nil), Z: mat.NewDense(3, 2, nil)}
	assert.ErrorIs(t, f.CheckShape(points), ErrShapeMismatch)
}

func TestBoundaryCondition_Validate(t *testing.T) {
	assert.NoError(t, BoundaryCondition{Offset: Vector{1, 0, 0}, SetAverage: true}.Validate())

	err := BoundaryCondition{Perturb: 1e-5}.Validate()
	assert.ErrorIs(t, err, ErrPerturbNonZero)
	assert.Contains(t, err.Error(), "1e-05")
}
