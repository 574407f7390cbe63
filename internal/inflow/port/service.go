package port

import (
	"context"
	"io"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
)

// ProgressObserver receives run progress. Implementations must be safe for
// concurrent use.
type ProgressObserver interface {
	RunStarted(runID string, total, skipped int)
	SampleWritten(position int)
	RunFinished(err error)
}

// GeneratorService produces inflow fields for the configured time range.
type GeneratorService interface {
	Generate(ctx context.Context) (*domain.RunSummary, error)
}

// StatsService computes mean profiles from sampled velocity.
type StatsService interface {
	// Profile accumulates statistics over every sample of reader.
	Profile(ctx context.Context, reader SampleReader) (*domain.MeanProfile, error)

	// WriteProfile renders a profile as a whitespace separated table.
	WriteProfile(w io.Writer, profile *domain.MeanProfile) error
}

// ConvertService copies a sampled database into another format.
type ConvertService interface {
	Convert(ctx context.Context) (*domain.ConvertSummary, error)
}
