package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.InflowGeometryPath = "/case/faceCentres"
	cfg.Precursor.ReadPath = "/precursor"
	cfg.Precursor.Delta99, cfg.Precursor.Nu, cfg.Precursor.UTau, cfg.Precursor.U0 = 1, 1e-5, 0.05, 1
	cfg.Inflow.Delta99, cfg.Inflow.Nu, cfg.Inflow.UTau, cfg.Inflow.U0 = 1, 1e-5, 0.05, 1
	cfg.Time = domain.TimeRange{T0: 0, TEnd: 1, Dt: 0.1, Precision: 1}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ReaderFoamFile, cfg.InflowGeometryReader)
	assert.Equal(t, "points", cfg.HDF5PointsDatasetName)
	assert.Equal(t, "time", cfg.HDF5SampleTimesDatasetName)
	assert.Equal(t, "velocity", cfg.HDF5FieldValuesDatasetName)
	assert.Equal(t, WriterOFNative, cfg.Writer.Type)
	assert.Equal(t, CheckpointNone, cfg.Checkpoint.Backend)
	assert.Positive(t, cfg.Workers)
	assert.Empty(t, cfg.Status.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{
			name:    "UnknownGeometryReader",
			mutate:  func(c *Config) { c.InflowGeometryReader = "vtk" },
			wantErr: port.ErrUnknownReader,
		},
		{
			name:    "NonZeroPerturb",
			mutate:  func(c *Config) { c.BoundaryCondition.Perturb = 1e-5 },
			wantErr: domain.ErrPerturbNonZero,
		},
		{
			name:    "UnknownPrecursorReader",
			mutate:  func(c *Config) { c.Precursor.Reader = "netcdf" },
			wantErr: port.ErrUnknownReader,
		},
		{
			name:    "UnknownWriter",
			mutate:  func(c *Config) { c.Writer.Type = "vtk" },
			wantErr: port.ErrUnknownWriter,
		},
		{
			name:    "UnknownCheckpoint",
			mutate:  func(c *Config) { c.Checkpoint.Backend = "etcd" },
			wantErr: ErrUnknownCheckpoint,
		},
		{
			name:    "BadScaling",
			mutate:  func(c *Config) { c.Inflow.UTau = 0 },
			wantErr: domain.ErrInvalidScaling,
		},
		{
			name:    "BadTimeRange",
			mutate:  func(c *Config) { c.Time.Dt = 0 },
			wantErr: domain.ErrInvalidTimeRange,
		},
		{name: "HDF5Precursor", mutate: func(c *Config) { c.Precursor.Reader = ReaderHDF5; c.Precursor.Layout = "" }},
		{name: "ArrowWriter", mutate: func(c *Config) { c.Writer.Type = WriterArrow }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Writer.Type = "vtk"
	cfg.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, port.ErrUnknownWriter))
	assert.True(t, errors.Is(err, domain.ErrInvalidScaling))
	assert.Contains(t, err.Error(), "inflowGeometryPath is required")
	assert.Contains(t, err.Error(), "workers must be positive")
}

func TestLoad_Fallback(t *testing.T) {
	t.Setenv("ENV", "missing-environment")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().HDF5FileName, cfg.HDF5FileName)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
