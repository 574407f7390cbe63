package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anthanhphan/gosdk/logger"
	"golang.org/x/sync/errgroup"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// ConvertService copies every sample of a reader into a writer, e.g. a
// foamFile precursor into an HDF5 database.
type ConvertService struct {
	source  port.SampleReader
	target  port.FieldWriter
	workers int
}

var _ port.ConvertService = (*ConvertService)(nil)

func NewConvertService(source port.SampleReader, target port.FieldWriter, workers int) *ConvertService {
	if workers <= 0 {
		workers = 1
	}
	return &ConvertService{source: source, target: target, workers: workers}
}

func (s *ConvertService) Convert(ctx context.Context) (*domain.ConvertSummary, error) {
	points, err := s.source.ReadPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}
	times, err := s.source.Times(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}

	logger.Infow("Conversion started", "source", s.source.Name(), "target", s.target.Path(), "samples", len(times))

	if err := s.target.Prepare(ctx, points, len(times)); err != nil {
		_ = s.target.Close()
		return nil, fmt.Errorf("failed to prepare target: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for pos, label := range times {
		g.Go(func() error {
			t, err := strconv.ParseFloat(label, 64)
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", label, err)
			}
			u, err := s.source.ReadVelocity(gctx, pos)
			if err != nil {
				return fmt.Errorf("failed to read time %s: %w", label, err)
			}
			return s.target.Write(gctx, port.Sample{Position: pos, Time: t, Label: label, Field: u})
		})
	}
	runErr := g.Wait()
	if closeErr := s.target.Close(); closeErr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close target: %w", closeErr)
	}
	if runErr != nil {
		logger.Errorw("Conversion failed", "source", s.source.Name(), "error", runErr.Error())
		return nil, runErr
	}

	rows, cols := points.Dims()
	logger.Infow("Conversion completed", "target", s.target.Path(), "samples", len(times))
	return &domain.ConvertSummary{
		Source:  s.source.Name(),
		Target:  s.target.Path(),
		Samples: len(times),
		Rows:    rows,
		Columns: cols,
	}, nil
}
