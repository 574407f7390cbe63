package hdf5store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const (
	// ReaderName selects the database reader in the precursor settings.
	ReaderName = "hdf5"
	// DatabaseKind identifies the database writer used by convert.
	DatabaseKind = "hdf5db"
)

// Dataset names of a precursor database. shape holds (nTimes, nY, nZ).
const (
	dsShape    = "shape"
	dsX        = "x"
	dsPointsY  = "pointsY"
	dsPointsZ  = "pointsZ"
	dsTimes    = "times"
	dsVelocity = "velocity"
)

// DatabaseReader serves samples from a database produced by DatabaseWriter.
// The grid and times are read on first use, the velocity on first ReadVelocity.
type DatabaseReader struct {
	path string

	metaOnce sync.Once
	metaErr  error
	points   *domain.StructuredPoints
	times    []float64
	labels   []string

	velOnce  sync.Once
	velErr   error
	velocity []float64
}

var _ port.SampleReader = (*DatabaseReader)(nil)

func NewDatabaseReader(path string) *DatabaseReader {
	return &DatabaseReader{path: path}
}

func (r *DatabaseReader) Name() string {
	return ReaderName
}

func (r *DatabaseReader) ReadPoints(ctx context.Context) (*domain.StructuredPoints, error) {
	if err := r.loadMeta(ctx); err != nil {
		return nil, err
	}
	return r.points, nil
}

func (r *DatabaseReader) Times(ctx context.Context) ([]string, error) {
	if err := r.loadMeta(ctx); err != nil {
		return nil, err
	}
	return r.labels, nil
}

func (r *DatabaseReader) ReadVelocity(ctx context.Context, position int) (*domain.VectorField, error) {
	if err := r.loadMeta(ctx); err != nil {
		return nil, err
	}
	if position < 0 || position >= len(r.times) {
		return nil, fmt.Errorf("%w: %d of %d samples", port.ErrPositionOutOfRange, position, len(r.times))
	}

	r.velOnce.Do(func() {
		sets, err := readDatasets(r.path, dsVelocity)
		if err != nil {
			r.velErr = err
			return
		}
		r.velocity = sets[dsVelocity]
		rows, cols := r.points.Dims()
		if want := len(r.times) * rows * cols * 3; len(r.velocity) != want {
			r.velErr = fmt.Errorf("%w: velocity has %d values, expected %d", ErrCorrupt, len(r.velocity), want)
		}
	})
	if r.velErr != nil {
		return nil, r.velErr
	}

	rows, cols := r.points.Dims()
	field, err := domain.NewVectorField(rows, cols)
	if err != nil {
		return nil, err
	}
	n := rows * cols
	src := r.velocity[position*n*3 : (position+1)*n*3]
	for k := 0; k < n; k++ {
		i, j := k/cols, k%cols
		field.UX.Set(i, j, src[3*k])
		field.UY.Set(i, j, src[3*k+1])
		field.UZ.Set(i, j, src[3*k+2])
	}
	return field, nil
}

func (r *DatabaseReader) Close() error {
	return nil
}

func (r *DatabaseReader) loadMeta(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.metaOnce.Do(func() {
		sets, err := readDatasets(r.path, dsShape, dsX, dsPointsY, dsPointsZ, dsTimes)
		if err != nil {
			r.metaErr = err
			return
		}
		r.metaErr = r.decodeMeta(sets)
	})
	return r.metaErr
}

func (r *DatabaseReader) decodeMeta(sets map[string][]float64) error {
	shape := sets[dsShape]
	if len(shape) != 3 {
		return fmt.Errorf("%w: shape has %d entries", ErrCorrupt, len(shape))
	}
	nt, ny, nz := int(shape[0]), int(shape[1]), int(shape[2])
	if nt <= 0 || ny <= 0 || nz <= 0 {
		return fmt.Errorf("%w: shape %v", ErrCorrupt, shape)
	}
	if len(sets[dsPointsY]) != ny*nz || len(sets[dsPointsZ]) != ny*nz {
		return fmt.Errorf("%w: points do not match shape %dx%d", ErrCorrupt, ny, nz)
	}
	if len(sets[dsTimes]) != nt {
		return fmt.Errorf("%w: %d times for %d samples", ErrCorrupt, len(sets[dsTimes]), nt)
	}
	if len(sets[dsX]) != 1 {
		return fmt.Errorf("%w: x has %d entries", ErrCorrupt, len(sets[dsX]))
	}

	yInd := make([]int, ny*nz)
	for i := range yInd {
		yInd[i] = i
	}
	zInd := make([][]int, ny)
	for i := range zInd {
		zInd[i] = make([]int, nz)
		for j := range zInd[i] {
			zInd[i][j] = j
		}
	}
	r.points = &domain.StructuredPoints{
		X:    sets[dsX][0],
		Y:    mat.NewDense(ny, nz, sets[dsPointsY]),
		Z:    mat.NewDense(ny, nz, sets[dsPointsZ]),
		YInd: yInd,
		ZInd: zInd,
	}
	r.times = sets[dsTimes]
	r.labels = make([]string, nt)
	for i, t := range r.times {
		r.labels[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}
	return nil
}

// DatabaseWriter buffers a converted precursor database and writes it on Close.
type DatabaseWriter struct {
	path string
	buf  sampleBuffer
}

var _ port.FieldWriter = (*DatabaseWriter)(nil)

func NewDatabaseWriter(path string) *DatabaseWriter {
	return &DatabaseWriter{path: path}
}

func (w *DatabaseWriter) Kind() string {
	return DatabaseKind
}

func (w *DatabaseWriter) Path() string {
	return w.path
}

func (w *DatabaseWriter) Prepare(_ context.Context, points *domain.StructuredPoints, steps int) error {
	return w.buf.prepare(points, steps)
}

func (w *DatabaseWriter) Write(ctx context.Context, sample port.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.buf.store(sample)
}

func (w *DatabaseWriter) Resumable() bool {
	return false
}

func (w *DatabaseWriter) Close() error {
	steps, _, written := w.buf.snapshot()
	if steps == 0 {
		return nil
	}
	if written < steps {
		return fmt.Errorf("%w: %d of %d samples written", ErrCorrupt, written, steps)
	}

	w.buf.mu.Lock()
	defer w.buf.mu.Unlock()
	p := w.buf.points
	ny, nz := w.buf.rows, w.buf.cols
	return writeDatasets(w.path, []dataset{
		{name: dsShape, dims: []uint64{3}, data: []float64{float64(steps), float64(ny), float64(nz)}},
		{name: dsX, dims: []uint64{1}, data: []float64{p.X}},
		{name: dsPointsY, dims: []uint64{uint64(ny), uint64(nz)}, data: rowMajor(p.Y)},
		{name: dsPointsZ, dims: []uint64{uint64(ny), uint64(nz)}, data: rowMajor(p.Z)},
		{name: dsTimes, dims: []uint64{uint64(steps)}, data: w.buf.times},
		{name: dsVelocity, dims: []uint64{uint64(steps), uint64(ny), uint64(nz), 3}, data: w.buf.velocity},
	})
}

func rowMajor(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, mat.Row(nil, i, m)...)
	}
	return out
}
