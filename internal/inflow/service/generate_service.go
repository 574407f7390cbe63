package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
	"gopkg.in/yaml.v3"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
	"github.com/anthanhphan/go-inflow-generator/pkg/resilience"
)

// Generation methods.
const (
	MethodLund          = "lundRescaling"
	MethodInterpolation = "interpolation"
)

// ManifestFileName is written next to the output after a successful run.
const ManifestFileName = "inflow_manifest.yaml"

var (
	ErrNotEnoughSamples = errors.New("not enough precursor samples for the time range")
	ErrUnknownMethod    = errors.New("unknown generation method")
)

// GenerateConfig configures a generation run.
type GenerateConfig struct {
	// Method is MethodLund or MethodInterpolation. Empty means MethodLund.
	Method  string
	Setup   LundSetup
	Times   domain.TimeRange
	Workers int
	// MeanProfilePath points at a table written by the stats command. When
	// empty the precursor mean is computed before generation.
	MeanProfilePath string
	ManifestDir     string
}

// GeneratorService maps every precursor sample of the time range onto the
// inflow grid, by Lund rescaling or by plain interpolation.
type GeneratorService struct {
	cfg        GenerateConfig
	geometry   port.GeometryReader
	precursor  port.SampleReader
	writer     port.FieldWriter
	checkpoint port.CheckpointStore
	observer   port.ProgressObserver
	now        func() time.Time
}

var _ port.GeneratorService = (*GeneratorService)(nil)

// GeneratorOption customizes a GeneratorService.
type GeneratorOption func(*GeneratorService)

// WithCheckpoint lets resumable writers skip positions completed earlier.
func WithCheckpoint(store port.CheckpointStore) GeneratorOption {
	return func(s *GeneratorService) { s.checkpoint = store }
}

// WithObserver reports progress to o.
func WithObserver(o port.ProgressObserver) GeneratorOption {
	return func(s *GeneratorService) { s.observer = o }
}

func NewGeneratorService(cfg GenerateConfig, geometry port.GeometryReader, precursor port.SampleReader, writer port.FieldWriter, opts ...GeneratorOption) *GeneratorService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Method == "" {
		cfg.Method = MethodLund
	}
	s := &GeneratorService{
		cfg:       cfg,
		geometry:  geometry,
		precursor: precursor,
		writer:    writer,
		observer:  noopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rescaling is the state shared by every position of a run. transform maps
// one precursor sample onto the inflow grid and must be safe for concurrent
// use.
type rescaling struct {
	transform  func(*domain.VectorField) (*domain.VectorField, error)
	precPoints *domain.StructuredPoints
	rowsInside int
	gamma      float64
	runKey     string
	done       map[int]struct{}
	total      int
	written    atomic.Int64
}

func (s *GeneratorService) Generate(ctx context.Context) (*domain.RunSummary, error) {
	startedAt := s.now()
	runID := uuid.NewString()

	r, size, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	logger.Infow("Generation started",
		"run_id", runID,
		"method", s.cfg.Method,
		"reader", s.precursor.Name(),
		"writer", s.writer.Kind(),
		"steps", size,
		"skipped", len(r.done),
		"rows_inside", r.rowsInside,
		"gamma", r.gamma,
	)
	s.observer.RunStarted(runID, size, len(r.done))

	runErr := s.run(ctx, r, size)
	if closeErr := s.writer.Close(); closeErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close writer: %w", closeErr))
	}
	s.observer.RunFinished(runErr)
	if runErr != nil {
		logger.Errorw("Generation failed", "run_id", runID, "method", s.cfg.Method, "error", runErr.Error())
		return nil, runErr
	}

	summary := &domain.RunSummary{
		RunID:      runID,
		RunKey:     r.runKey,
		Generator:  s.cfg.Method,
		Reader:     s.precursor.Name(),
		Writer:     s.writer.Kind(),
		OutputPath: s.writer.Path(),
		Times:      s.cfg.Times,
		Steps:      size,
		Skipped:    len(r.done),
		Points:     r.total,
		RowsInside: r.rowsInside,
		Gamma:      r.gamma,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
	}
	if s.cfg.ManifestDir != "" {
		if err := WriteManifest(s.cfg.ManifestDir, summary); err != nil {
			return nil, err
		}
	}

	logger.Infow("Generation completed",
		"run_id", runID,
		"steps", size,
		"skipped", len(r.done),
		"elapsed", summary.FinishedAt.Sub(startedAt).String(),
	)
	return summary, nil
}

// prepare reads both grids, sets up the method and opens the writer.
func (s *GeneratorService) prepare(ctx context.Context) (*rescaling, int, error) {
	if err := s.cfg.Times.Validate(); err != nil {
		return nil, 0, err
	}
	size := s.cfg.Times.Steps()

	inflPoints, err := s.geometry.ReadGeometry(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read inflow geometry: %w", err)
	}
	precPoints, err := s.precursor.ReadPoints(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read precursor points: %w", err)
	}
	times, err := s.precursor.Times(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list precursor samples: %w", err)
	}
	if size > len(times) {
		return nil, 0, fmt.Errorf("%w: %d steps requested, %d samples available", ErrNotEnoughSamples, size, len(times))
	}

	r := &rescaling{
		precPoints: precPoints,
		runKey:     RunKey(s.cfg.Method, s.cfg.Times, s.writer.Path(), inflPoints),
		done:       make(map[int]struct{}),
		total:      inflPoints.Len(),
	}
	switch s.cfg.Method {
	case MethodLund:
		err = s.prepareLund(ctx, r, inflPoints)
	case MethodInterpolation:
		err = s.prepareInterpolation(r, inflPoints)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMethod, s.cfg.Method)
	}
	if err != nil {
		return nil, 0, err
	}

	if s.checkpoint != nil && s.writer.Resumable() {
		positions, err := s.checkpoint.Completed(ctx, r.runKey)
		if err != nil {
			return nil, 0, err
		}
		for _, pos := range positions {
			if pos < size {
				r.done[pos] = struct{}{}
			}
		}
	}

	if err := s.writer.Prepare(ctx, inflPoints, size); err != nil {
		_ = s.writer.Close()
		return nil, 0, fmt.Errorf("failed to prepare writer: %w", err)
	}
	return r, size, nil
}

// prepareLund rescales the precursor mean once. Each sample then has the
// precursor mean removed, its fluctuations rescaled and the inflow mean added.
func (s *GeneratorService) prepareLund(ctx context.Context, r *rescaling, inflPoints *domain.StructuredPoints) error {
	params, err := NewLundParams(s.cfg.Setup, r.precPoints, inflPoints)
	if err != nil {
		return err
	}
	mean, err := s.precursorMean(ctx, r.precPoints)
	if err != nil {
		return err
	}
	meanUX, meanUY, err := RescaleMeanVelocity(params, mean.UX, mean.UY)
	if err != nil {
		return err
	}

	r.rowsInside, r.gamma = params.NInfl, params.Gamma
	r.transform = func(u *domain.VectorField) (*domain.VectorField, error) {
		subtractMean(u, mean)
		field, err := RescaleFluctuations(params, u)
		if err != nil {
			return nil, err
		}
		field.UX.Add(field.UX, meanUX)
		field.UY.Add(field.UY, meanUY)
		return field, nil
	}
	return nil
}

func (s *GeneratorService) prepareInterpolation(r *rescaling, inflPoints *domain.StructuredPoints) error {
	params, err := NewInterpolationParams(s.cfg.Setup, r.precPoints, inflPoints)
	if err != nil {
		return err
	}
	r.transform = func(u *domain.VectorField) (*domain.VectorField, error) {
		return Interpolate(params, u)
	}
	return nil
}

func (s *GeneratorService) precursorMean(ctx context.Context, points *domain.StructuredPoints) (*domain.MeanProfile, error) {
	var (
		mean *domain.MeanProfile
		err  error
	)
	if s.cfg.MeanProfilePath != "" {
		mean, err = LoadMeanProfile(s.cfg.MeanProfilePath)
	} else {
		logger.Infow("Computing precursor mean profile", "reader", s.precursor.Name())
		mean, err = NewStatsService(s.cfg.Workers).Profile(ctx, s.precursor)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain precursor mean: %w", err)
	}
	if rows, _ := points.Dims(); mean.Len() != rows {
		return nil, fmt.Errorf("%w: mean profile has %d rows, precursor grid %d", domain.ErrShapeMismatch, mean.Len(), rows)
	}
	return mean, nil
}

// run splits the positions into one contiguous chunk per worker.
func (s *GeneratorService) run(ctx context.Context, r *rescaling, size int) error {
	chunks, offsets := domain.ChunksAndOffsets(s.cfg.Workers, size)
	pool := resilience.NewWorkerPool(ctx, s.cfg.Workers, len(chunks))

	remaining := size - len(r.done)
	step := max(remaining/10, 1)

	for k := range chunks {
		start, n := offsets[k], chunks[k]
		if n == 0 {
			continue
		}
		job := func(ctx context.Context) error {
			for pos := start; pos < start+n; pos++ {
				if _, ok := r.done[pos]; ok {
					continue
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.generateOne(ctx, r, pos); err != nil {
					return fmt.Errorf("position %d: %w", pos, err)
				}
				if w := r.written.Add(1); w%int64(step) == 0 {
					logger.Infow("Generation progress", "written", w, "remaining", remaining, "percent", 100*w/int64(remaining))
				}
			}
			return nil
		}
		if err := pool.Submit(ctx, job); err != nil {
			_ = pool.Wait()
			return err
		}
	}
	return pool.Wait()
}

func (s *GeneratorService) generateOne(ctx context.Context, r *rescaling, pos int) error {
	u, err := s.precursor.ReadVelocity(ctx, pos)
	if err != nil {
		return err
	}
	if err := u.CheckShape(r.precPoints); err != nil {
		return err
	}
	field, err := r.transform(u)
	if err != nil {
		return err
	}

	sample := port.Sample{
		Position: pos,
		Time:     s.cfg.Times.At(pos),
		Label:    s.cfg.Times.Label(pos),
		Field:    field,
	}
	if err := s.writer.Write(ctx, sample); err != nil {
		return fmt.Errorf("failed to write time %s: %w", sample.Label, err)
	}

	if s.checkpoint != nil && s.writer.Resumable() {
		if err := s.checkpoint.MarkCompleted(ctx, r.runKey, pos); err != nil {
			logger.Warnw("Failed to record checkpoint", "position", pos, "error", err.Error())
		}
	}
	s.observer.SampleWritten(pos)
	return nil
}

// subtractMean removes the streamwise and wall-normal mean profile from
// every column of u.
func subtractMean(u *domain.VectorField, mean *domain.MeanProfile) {
	rows, cols := u.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			u.UX.Set(i, j, u.UX.At(i, j)-mean.UX[i])
			u.UY.Set(i, j, u.UY.At(i, j)-mean.UY[i])
		}
	}
}

// RunKey identifies a run by its method, time range, output location and
// inflow grid, so a rerun with the same inputs resumes where the last one
// stopped.
func RunKey(method string, times domain.TimeRange, outputPath string, points *domain.StructuredPoints) string {
	h := murmur3.New128()
	_, _ = fmt.Fprintf(h, "%s|%v|%v|%v|%d|%s|", method, times.T0, times.TEnd, times.Dt, times.Precision, outputPath)

	var buf [8]byte
	for _, p := range points.Flatten() {
		for _, v := range p {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = h.Write(buf[:])
		}
	}
	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}

// WriteManifest stores the run summary as YAML in dir.
func WriteManifest(dir string, summary *domain.RunSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create manifest dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0640); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

type noopObserver struct{}

func (noopObserver) RunStarted(string, int, int) {}
func (noopObserver) SampleWritten(int)           {}
func (noopObserver) RunFinished(error)           {}
