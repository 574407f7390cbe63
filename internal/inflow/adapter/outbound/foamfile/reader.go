package foamfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// ReaderName is the value of the reader settings that selects this backend.
const ReaderName = "foamFile"

// Layout selects where points and velocity live below the base directory.
type Layout string

const (
	// LayoutSampled is the output of the sample utility:
	// <base>/<time>/<surface>/faceCentres and <base>/<time>/<surface>/vectorField/U.
	LayoutSampled Layout = "sampled"
	// LayoutBoundaryData is the input of timeVaryingMappedFixedValue:
	// <base>/points and <base>/<time>/U.
	LayoutBoundaryData Layout = "boundaryData"
)

// Reader reads velocity samples stored as foamFile lists.
type Reader struct {
	base    string
	surface string
	field   string
	layout  Layout
	opts    domain.StructuredOptions

	timesOnce sync.Once
	times     []string
	timesErr  error

	pointsOnce sync.Once
	points     *domain.StructuredPoints
	pointsErr  error
}

var _ port.SampleReader = (*Reader)(nil)

// NewReader builds a reader over base. surface is ignored for the
// boundaryData layout.
func NewReader(base, surface string, layout Layout, opts domain.StructuredOptions) *Reader {
	return &Reader{
		base:    filepath.Clean(base),
		surface: surface,
		field:   "U",
		layout:  layout,
		opts:    opts,
	}
}

func (r *Reader) Name() string {
	return ReaderName
}

// Times lists the numeric directories below base in increasing order.
func (r *Reader) Times(_ context.Context) ([]string, error) {
	r.timesOnce.Do(func() {
		entries, err := os.ReadDir(r.base)
		if err != nil {
			r.timesErr = fmt.Errorf("failed to list sample times: %w", err)
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() && domain.IsTimeName(e.Name()) {
				names = append(names, e.Name())
			}
		}
		r.times = domain.SortTimes(names)
		if len(r.times) == 0 {
			r.timesErr = fmt.Errorf("%w in %s", port.ErrNoSamples, r.base)
		}
	})
	return r.times, r.timesErr
}

// ReadPoints reads and structures the sample points. The sampled layout takes
// them from the first time directory.
func (r *Reader) ReadPoints(ctx context.Context) (*domain.StructuredPoints, error) {
	r.pointsOnce.Do(func() {
		path, err := r.pointsPath(ctx)
		if err != nil {
			r.pointsErr = err
			return
		}
		r.points, r.pointsErr = ReadStructuredPoints(path, r.opts)
	})
	return r.points, r.pointsErr
}

// ReadVelocity reads the velocity of the sample at position.
func (r *Reader) ReadVelocity(ctx context.Context, position int) (*domain.VectorField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	times, err := r.Times(ctx)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= len(times) {
		return nil, fmt.Errorf("%w: %d of %d samples", port.ErrPositionOutOfRange, position, len(times))
	}
	points, err := r.ReadPoints(ctx)
	if err != nil {
		return nil, err
	}

	path := r.velocityPath(times[position])
	raw, err := ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s at time %s (%s)", port.ErrFieldNotSampled, r.field, times[position], path)
		}
		return nil, err
	}
	field, err := StructureVelocity(raw, points, r.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to structure %s: %w", path, err)
	}
	return field, nil
}

func (r *Reader) Close() error {
	return nil
}

func (r *Reader) pointsPath(ctx context.Context) (string, error) {
	if r.layout == LayoutBoundaryData {
		return filepath.Join(r.base, "points"), nil
	}
	times, err := r.Times(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.base, times[0], r.surface, "faceCentres"), nil
}

func (r *Reader) velocityPath(time string) string {
	if r.layout == LayoutBoundaryData {
		return filepath.Join(r.base, time, r.field)
	}
	return filepath.Join(r.base, time, r.surface, "vectorField", r.field)
}

// ReadStructuredPoints parses a face centre file and arranges it into a grid.
func ReadStructuredPoints(path string, opts domain.StructuredOptions) (*domain.StructuredPoints, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	points, err := StructurePoints(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to structure %s: %w", path, err)
	}
	return points, nil
}

// GeometryReader reads the inflow patch face centres from a single file.
type GeometryReader struct {
	path string
	opts domain.StructuredOptions
}

var _ port.GeometryReader = (*GeometryReader)(nil)

func NewGeometryReader(path string, opts domain.StructuredOptions) *GeometryReader {
	return &GeometryReader{path: path, opts: opts}
}

func (g *GeometryReader) ReadGeometry(ctx context.Context) (*domain.StructuredPoints, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadStructuredPoints(g.path, g.opts)
}
