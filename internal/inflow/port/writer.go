package port

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
)

var ErrUnknownWriter = errors.New("unknown writer")

// Sample is one generated velocity field bound to a simulation time.
type Sample struct {
	Position int
	Time     float64
	Label    string
	Field    *domain.VectorField
}

//go:generate mockgen -destination=../service/mocks/writer_mock.go -package=mocks -source=writer.go

// FieldWriter persists generated inflow fields.
type FieldWriter interface {
	// Kind identifies the output format, e.g. "ofnative".
	Kind() string

	// Path is the directory or file the writer produces.
	Path() string

	// Prepare is called once before any Write with the inflow grid and the
	// total number of samples that will be written.
	Prepare(ctx context.Context, points *domain.StructuredPoints, steps int) error

	// Write stores one sample. It may be called concurrently for distinct
	// positions.
	Write(ctx context.Context, sample Sample) error

	// Resumable reports whether samples written by an earlier run survive,
	// so completed positions can be skipped.
	Resumable() bool

	// Close flushes buffered output.
	Close() error
}
