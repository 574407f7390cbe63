package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// Backend names accepted by the configuration.
const (
	ReaderFoamFile = "foamFile"
	ReaderHDF5     = "hdf5"

	WriterOFNative = "ofnative"
	WriterHDF5     = "hdf5"
	WriterArrow    = "arrow"

	CheckpointNone    = "none"
	CheckpointJournal = "journal"
	CheckpointRedis   = "redis"

	LayoutSampled      = "sampled"
	LayoutBoundaryData = "boundaryData"
)

var ErrUnknownCheckpoint = errors.New("unknown checkpoint backend")

// Config holds the inflow generator configuration. The top-level keys are the
// ones the solver-side boundary condition documentation refers to.
type Config struct {
	InflowGeometryReader string                   `json:"inflowGeometryReader" yaml:"inflowGeometryReader"`
	InflowGeometryPath   string                   `json:"inflowGeometryPath" yaml:"inflowGeometryPath"`
	BoundaryCondition    domain.BoundaryCondition `json:"boundaryCondition" yaml:"boundaryCondition"`

	HDF5FileName               string `json:"hdf5FileName" yaml:"hdf5FileName"`
	HDF5PointsDatasetName      string `json:"hdf5PointsDatasetName" yaml:"hdf5PointsDatasetName"`
	HDF5SampleTimesDatasetName string `json:"hdf5SampleTimesDatasetName" yaml:"hdf5SampleTimesDatasetName"`
	HDF5FieldValuesDatasetName string `json:"hdf5FieldValuesDatasetName" yaml:"hdf5FieldValuesDatasetName"`

	Precursor  PrecursorConfig  `json:"precursor" yaml:"precursor"`
	Inflow     InflowConfig     `json:"inflow" yaml:"inflow"`
	Time       domain.TimeRange `json:"time" yaml:"time"`
	Writer     WriterConfig     `json:"writer" yaml:"writer"`
	Workers    int              `json:"workers" yaml:"workers"`
	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint"`
	Convert    ConvertConfig    `json:"convert" yaml:"convert"`
	Status     StatusConfig     `json:"status" yaml:"status"`
	Logger     logger.Config    `json:"logger" yaml:"logger"`
}

type PrecursorConfig struct {
	Reader          string                   `json:"reader" yaml:"reader"`
	ReadPath        string                   `json:"readPath" yaml:"readPath"`
	Layout          string                   `json:"layout" yaml:"layout"`
	SurfaceName     string                   `json:"surfaceName" yaml:"surfaceName"`
	WallY           float64                  `json:"wallY" yaml:"wallY"`
	MeanProfilePath string                   `json:"meanProfilePath" yaml:"meanProfilePath"`
	Delta99         float64                  `json:"delta99" yaml:"delta99"`
	Nu              float64                  `json:"nu" yaml:"nu"`
	UTau            float64                  `json:"uTau" yaml:"uTau"`
	U0              float64                  `json:"u0" yaml:"u0"`
	Structured      domain.StructuredOptions `json:"structured" yaml:"structured"`
}

func (p PrecursorConfig) BoundaryLayer() domain.BoundaryLayer {
	return domain.BoundaryLayer{Delta99: p.Delta99, Nu: p.Nu, UTau: p.UTau, U0: p.U0}
}

type InflowConfig struct {
	PatchName  string                   `json:"patchName" yaml:"patchName"`
	WallY      float64                  `json:"wallY" yaml:"wallY"`
	Delta99    float64                  `json:"delta99" yaml:"delta99"`
	Nu         float64                  `json:"nu" yaml:"nu"`
	UTau       float64                  `json:"uTau" yaml:"uTau"`
	U0         float64                  `json:"u0" yaml:"u0"`
	Structured domain.StructuredOptions `json:"structured" yaml:"structured"`
}

func (i InflowConfig) BoundaryLayer() domain.BoundaryLayer {
	return domain.BoundaryLayer{Delta99: i.Delta99, Nu: i.Nu, UTau: i.UTau, U0: i.U0}
}

type WriterConfig struct {
	Type string `json:"type" yaml:"type"`
	// Path is the case directory for ofnative and the output directory otherwise.
	Path string `json:"path" yaml:"path"`
}

type CheckpointConfig struct {
	Backend          string      `json:"backend" yaml:"backend"`
	Path             string      `json:"path" yaml:"path"`
	FSync            bool        `json:"fsync" yaml:"fsync"`
	FailureThreshold int         `json:"failureThreshold" yaml:"failureThreshold"`
	OpenTimeoutMS    int         `json:"openTimeoutMs" yaml:"openTimeoutMs"`
	Redis            RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type ConvertConfig struct {
	// OutputPath is the HDF5 database written by the convert command.
	OutputPath string `json:"outputPath" yaml:"outputPath"`
}

type StatusConfig struct {
	// Addr of the status server. Empty disables it.
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		InflowGeometryReader:       ReaderFoamFile,
		HDF5FileName:               "inflow.h5",
		HDF5PointsDatasetName:      "points",
		HDF5SampleTimesDatasetName: "time",
		HDF5FieldValuesDatasetName: "velocity",
		Precursor: PrecursorConfig{
			Reader:      ReaderFoamFile,
			Layout:      LayoutSampled,
			SurfaceName: "inletSurface",
		},
		Inflow: InflowConfig{
			PatchName: "inlet",
		},
		Time: domain.TimeRange{
			Precision: 6,
		},
		Writer: WriterConfig{
			Type: WriterOFNative,
			Path: ".",
		},
		Workers: runtime.NumCPU(),
		Checkpoint: CheckpointConfig{
			Backend:          CheckpointNone,
			Path:             "./checkpoint",
			FailureThreshold: 5,
			OpenTimeoutMS:    30000,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Convert: ConvertConfig{
			OutputPath: "precursor.h5",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "inflow", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// The logger is configured from this file, so it is not ready yet.
		log.Printf("Failed to load config from %s: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Validate reports every problem of the configuration that generation
// depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.InflowGeometryReader != ReaderFoamFile {
		errs = append(errs, fmt.Errorf("%w: inflowGeometryReader %q", port.ErrUnknownReader, c.InflowGeometryReader))
	}
	if c.InflowGeometryPath == "" {
		errs = append(errs, errors.New("inflowGeometryPath is required"))
	}
	if err := c.BoundaryCondition.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Precursor.Reader {
	case ReaderFoamFile:
		if c.Precursor.Layout != LayoutSampled && c.Precursor.Layout != LayoutBoundaryData {
			errs = append(errs, fmt.Errorf("unknown precursor layout %q", c.Precursor.Layout))
		}
	case ReaderHDF5:
	default:
		errs = append(errs, fmt.Errorf("%w: precursor.reader %q", port.ErrUnknownReader, c.Precursor.Reader))
	}
	if c.Precursor.ReadPath == "" {
		errs = append(errs, errors.New("precursor.readPath is required"))
	}
	if err := c.Precursor.BoundaryLayer().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("precursor: %w", err))
	}
	if err := c.Inflow.BoundaryLayer().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("inflow: %w", err))
	}
	if err := c.Time.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Writer.Type {
	case WriterOFNative:
		if c.Inflow.PatchName == "" {
			errs = append(errs, errors.New("inflow.patchName is required for the ofnative writer"))
		}
	case WriterHDF5:
		if c.HDF5FileName == "" {
			errs = append(errs, errors.New("hdf5FileName is required for the hdf5 writer"))
		}
	case WriterArrow:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", port.ErrUnknownWriter, c.Writer.Type))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}

	switch c.Checkpoint.Backend {
	case CheckpointNone, CheckpointJournal, CheckpointRedis:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCheckpoint, c.Checkpoint.Backend))
	}
	return errors.Join(errs...)
}
