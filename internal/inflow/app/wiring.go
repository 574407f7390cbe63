package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/outbound/arrowipc"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/outbound/checkpoint"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/outbound/foamfile"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/adapter/outbound/hdf5store"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/config"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

func newPrecursorReader(cfg *config.Config) (port.SampleReader, error) {
	p := cfg.Precursor
	switch p.Reader {
	case config.ReaderFoamFile:
		return foamfile.NewReader(p.ReadPath, p.SurfaceName, foamfile.Layout(p.Layout), p.Structured), nil
	case config.ReaderHDF5:
		return hdf5store.NewDatabaseReader(p.ReadPath), nil
	default:
		return nil, fmt.Errorf("%w: %q", port.ErrUnknownReader, p.Reader)
	}
}

// newInflowReader reads back the fields a previous rescale run produced.
func newInflowReader(cfg *config.Config) (port.SampleReader, error) {
	if cfg.Writer.Type != config.WriterOFNative {
		return nil, fmt.Errorf("%w: inflow statistics need the %s writer, configured %q",
			port.ErrUnknownReader, config.WriterOFNative, cfg.Writer.Type)
	}
	root := foamfile.NewBoundaryDataWriter(cfg.Writer.Path, cfg.Inflow.PatchName).Path()
	return foamfile.NewReader(root, "", foamfile.LayoutBoundaryData, domain.StructuredOptions{}), nil
}

func newGeometryReader(cfg *config.Config) (port.GeometryReader, error) {
	if cfg.InflowGeometryReader != config.ReaderFoamFile {
		return nil, fmt.Errorf("%w: %q", port.ErrUnknownReader, cfg.InflowGeometryReader)
	}
	return foamfile.NewGeometryReader(cfg.InflowGeometryPath, cfg.Inflow.Structured), nil
}

// hdf5Names applies the same defaults as the inflow writer, so the printed
// boundary condition names the datasets the file contains.
func hdf5Names(cfg *config.Config) hdf5store.DatasetNames {
	return hdf5store.DatasetNames{
		Points: cfg.HDF5PointsDatasetName,
		Times:  cfg.HDF5SampleTimesDatasetName,
		Values: cfg.HDF5FieldValuesDatasetName,
	}.WithDefaults()
}

func newWriter(cfg *config.Config) (port.FieldWriter, error) {
	switch cfg.Writer.Type {
	case config.WriterOFNative:
		return foamfile.NewBoundaryDataWriter(cfg.Writer.Path, cfg.Inflow.PatchName), nil
	case config.WriterHDF5:
		return hdf5store.NewInflowWriter(filepath.Join(cfg.Writer.Path, cfg.HDF5FileName), hdf5Names(cfg)), nil
	case config.WriterArrow:
		return arrowipc.NewWriter(cfg.Writer.Path), nil
	default:
		return nil, fmt.Errorf("%w: %q", port.ErrUnknownWriter, cfg.Writer.Type)
	}
}

// newCheckpoint returns nil when checkpointing is disabled. Enabled stores
// are wrapped so their failures never fail a run.
func newCheckpoint(cfg *config.Config) (port.CheckpointStore, error) {
	c := cfg.Checkpoint
	var store port.CheckpointStore
	switch c.Backend {
	case config.CheckpointNone, "":
		return nil, nil
	case config.CheckpointJournal:
		j, err := checkpoint.OpenJournal(c.Path, c.FSync)
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint journal: %w", err)
		}
		store = j
	case config.CheckpointRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		store = checkpoint.NewRedisStore(client)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCheckpoint, c.Backend)
	}
	return checkpoint.NewGuarded(store, "checkpoint-"+c.Backend, c.FailureThreshold,
		time.Duration(c.OpenTimeoutMS)*time.Millisecond), nil
}
