package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/anthanhphan/gosdk/logger"
	"golang.org/x/sync/errgroup"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

// ProfileHeader is the first line of a profile table.
const ProfileHeader = "# y ux uy uz uu vv ww uv"

// StatsService averages sampled velocity over time and the spanwise direction.
type StatsService struct {
	workers int
}

var _ port.StatsService = (*StatsService)(nil)

func NewStatsService(workers int) *StatsService {
	if workers <= 0 {
		workers = 1
	}
	return &StatsService{workers: workers}
}

// moments holds per-row means and centred second moments of n values.
// Samples are reduced on their own and merged pairwise, so the result does
// not depend on the order they arrive in and stays accurate when the mean
// is large compared with the fluctuations.
type moments struct {
	mu sync.Mutex
	n  int

	mean [3][]float64
	m2   [3][]float64
	cuv  []float64
}

func newMoments(rows int) *moments {
	m := &moments{cuv: make([]float64, rows)}
	for c := range m.mean {
		m.mean[c] = make([]float64, rows)
		m.m2[c] = make([]float64, rows)
	}
	return m
}

// sampleMoments reduces one sample over the spanwise direction.
func sampleMoments(f *domain.VectorField) *moments {
	rows, cols := f.Dims()
	comps := f.Components()
	part := newMoments(rows)
	part.n = cols
	for i := 0; i < rows; i++ {
		for c, m := range comps {
			sum := 0.0
			for j := 0; j < cols; j++ {
				sum += m.At(i, j)
			}
			part.mean[c][i] = sum / float64(cols)
		}
		for j := 0; j < cols; j++ {
			var d [3]float64
			for c, m := range comps {
				d[c] = m.At(i, j) - part.mean[c][i]
				part.m2[c][i] += d[c] * d[c]
			}
			part.cuv[i] += d[0] * d[1]
		}
	}
	return part
}

func (m *moments) merge(b *moments) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.n == 0 {
		return
	}
	na, nb := float64(m.n), float64(b.n)
	n := na + nb
	for i := range m.cuv {
		var d [3]float64
		for c := range d {
			d[c] = b.mean[c][i] - m.mean[c][i]
			m.mean[c][i] += d[c] * nb / n
			m.m2[c][i] += b.m2[c][i] + d[c]*d[c]*na*nb/n
		}
		m.cuv[i] += b.cuv[i] + d[0]*d[1]*na*nb/n
	}
	m.n += b.n
}

// Profile reads every sample of reader and returns the mean velocity, the
// RMS of each fluctuating component and the uv covariance per row.
func (s *StatsService) Profile(ctx context.Context, reader port.SampleReader) (*domain.MeanProfile, error) {
	points, err := reader.ReadPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}
	times, err := reader.Times(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	rows, _ := points.Dims()

	acc := newMoments(rows)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for pos := range times {
		g.Go(func() error {
			u, err := reader.ReadVelocity(gctx, pos)
			if err != nil {
				return fmt.Errorf("failed to read time %s: %w", times[pos], err)
			}
			if err := u.CheckShape(points); err != nil {
				return err
			}
			acc.merge(sampleMoments(u))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if acc.n == 0 {
		return nil, port.ErrNoSamples
	}

	logger.Infow("Statistics collected", "reader", reader.Name(), "samples", len(times), "rows", rows)

	profile := domain.NewMeanProfile(rows)
	copy(profile.Y, points.RowY())
	n := float64(acc.n)
	for i := 0; i < rows; i++ {
		profile.UX[i], profile.UY[i], profile.UZ[i] = acc.mean[0][i], acc.mean[1][i], acc.mean[2][i]
		profile.UU[i] = math.Sqrt(acc.m2[0][i] / n)
		profile.VV[i] = math.Sqrt(acc.m2[1][i] / n)
		profile.WW[i] = math.Sqrt(acc.m2[2][i] / n)
		profile.UV[i] = acc.cuv[i] / n
	}
	return profile, nil
}

// WriteProfile renders profile as a whitespace separated table.
func (s *StatsService) WriteProfile(w io.Writer, profile *domain.MeanProfile) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ProfileHeader)
	for i := 0; i < profile.Len(); i++ {
		cols := []float64{profile.Y[i], profile.UX[i], profile.UY[i], profile.UZ[i],
			profile.UU[i], profile.VV[i], profile.WW[i], profile.UV[i]}
		for k, v := range cols {
			if k > 0 {
				_ = bw.WriteByte(' ')
			}
			_, _ = bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ParseProfile reads a table written by WriteProfile. Lines starting with
// '#' and blank lines are ignored.
func ParseProfile(r io.Reader) (*domain.MeanProfile, error) {
	var rows [][8]float64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 8 {
			return nil, fmt.Errorf("%w: line %d has %d columns, expected 8", ErrInvalidInput, lineNo, len(fields))
		}
		var row [8]float64
		for k, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid number %q", ErrInvalidInput, lineNo, f)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty profile", ErrInvalidInput)
	}

	p := domain.NewMeanProfile(len(rows))
	for i, row := range rows {
		p.Y[i], p.UX[i], p.UY[i], p.UZ[i] = row[0], row[1], row[2], row[3]
		p.UU[i], p.VV[i], p.WW[i], p.UV[i] = row[4], row[5], row[6], row[7]
	}
	return p, nil
}

// LoadMeanProfile reads a profile table from path.
func LoadMeanProfile(path string) (*domain.MeanProfile, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	p, err := ParseProfile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p, nil
}
