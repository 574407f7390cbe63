package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	httpHandler "github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/inbound/http"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/outbound/hdf5store"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/config"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/service"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg *config.Config
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	return NewWithConfig(cfg), nil
}

// NewWithConfig builds an App around an already loaded configuration.
func NewWithConfig(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Config returns the configuration the App runs with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Rescale generates the inflow fields for the configured time range with
// Lund rescaling.
func (a *App) Rescale(ctx context.Context) (*domain.RunSummary, error) {
	return a.generate(ctx, service.MethodLund)
}

// Interpolate maps the precursor samples onto the inflow grid without
// rescaling, using the same readers, writer and checkpoint as Rescale.
func (a *App) Interpolate(ctx context.Context) (*domain.RunSummary, error) {
	return a.generate(ctx, service.MethodInterpolation)
}

func (a *App) generate(ctx context.Context, method string) (*domain.RunSummary, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	geometry, err := newGeometryReader(a.cfg)
	if err != nil {
		return nil, err
	}
	precursor, err := newPrecursorReader(a.cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = precursor.Close() }()

	writer, err := newWriter(a.cfg)
	if err != nil {
		return nil, err
	}

	tracker := httpHandler.NewTracker()
	opts := []service.GeneratorOption{service.WithObserver(tracker)}

	store, err := newCheckpoint(a.cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warnw("Failed to close checkpoint store", "error", err.Error())
			}
		}()
		opts = append(opts, service.WithCheckpoint(store))
	}

	if a.cfg.Status.Addr != "" {
		stop := a.startStatusServer(tracker)
		defer stop()
	}

	svc := service.NewGeneratorService(service.GenerateConfig{
		Method: method,
		Setup: service.LundSetup{
			Precursor:      a.cfg.Precursor.BoundaryLayer(),
			Inflow:         a.cfg.Inflow.BoundaryLayer(),
			PrecursorWallY: a.cfg.Precursor.WallY,
			InflowWallY:    a.cfg.Inflow.WallY,
		},
		Times:           a.cfg.Time,
		Workers:         a.cfg.Workers,
		MeanProfilePath: a.cfg.Precursor.MeanProfilePath,
		ManifestDir:     a.cfg.Writer.Path,
	}, geometry, precursor, writer, opts...)

	return svc.Generate(ctx)
}

func (a *App) startStatusServer(tracker *httpHandler.Tracker) func() {
	srv := httpHandler.NewServer(a.cfg.Status.Addr, tracker)
	logger.Infow("Status server starting", "addr", a.cfg.Status.Addr)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorw("Status server exited", "error", err.Error())
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Errorw("Status server shutdown error", "error", err.Error())
		}
	}
}

// Stats writes the mean profile of the precursor, or of the generated inflow
// when inflow is set.
func (a *App) Stats(ctx context.Context, inflow bool, w io.Writer) error {
	newReader := newPrecursorReader
	if inflow {
		newReader = newInflowReader
	}
	reader, err := newReader(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	svc := service.NewStatsService(a.cfg.Workers)
	profile, err := svc.Profile(ctx, reader)
	if err != nil {
		return err
	}
	return svc.WriteProfile(w, profile)
}

// Convert copies the precursor database into an HDF5 database.
func (a *App) Convert(ctx context.Context) (*domain.ConvertSummary, error) {
	if a.cfg.Precursor.Reader == config.ReaderHDF5 {
		return nil, errors.New("precursor is already an HDF5 database")
	}
	source, err := newPrecursorReader(a.cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close() }()

	target := hdf5store.NewDatabaseWriter(a.cfg.Convert.OutputPath)
	return service.NewConvertService(source, target, a.cfg.Workers).Convert(ctx)
}

// BoundaryDict prints the boundary condition entry for the inflow patch.
func (a *App) BoundaryDict(w io.Writer) error {
	names := hdf5Names(a.cfg)
	return service.WriteBoundaryDict(w, service.BoundaryDict{
		Patch:             a.cfg.Inflow.PatchName,
		Writer:            a.cfg.Writer.Type,
		Condition:         a.cfg.BoundaryCondition,
		HDF5FileName:      a.cfg.HDF5FileName,
		PointsDataset:     names.Points,
		SampleTimeDataset: names.Times,
		ValuesDataset:     names.Values,
	})
}
