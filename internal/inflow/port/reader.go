package port

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
)

var (
	// ErrFieldNotSampled is returned when a time directory exists but the
	// requested field was never written to it, typically because the sample
	// utility ran before the solver produced the field.
	ErrFieldNotSampled    = errors.New("field has not been sampled")
	ErrUnknownReader      = errors.New("unknown reader")
	ErrPositionOutOfRange = errors.New("sample position out of range")
	ErrNoSamples          = errors.New("no sampled times found")
)

// GeometryReader reads the face centres of the inflow patch.
type GeometryReader interface {
	// ReadGeometry returns the patch face centres arranged on a grid.
	ReadGeometry(ctx context.Context) (*domain.StructuredPoints, error)
}

//go:generate mockgen -destination=../service/mocks/reader_mock.go -package=mocks -source=reader.go

// SampleReader gives access to velocity sampled in a precursor simulation.
type SampleReader interface {
	// Name identifies the backend, e.g. "foamFile" or "hdf5".
	Name() string

	// ReadPoints returns the grid the samples live on.
	ReadPoints(ctx context.Context) (*domain.StructuredPoints, error)

	// Times returns the sampled time labels in increasing order.
	Times(ctx context.Context) ([]string, error)

	// ReadVelocity returns the velocity of the sample at position in Times.
	ReadVelocity(ctx context.Context, position int) (*domain.VectorField, error)

	// Close releases resources held by the reader.
	Close() error
}
