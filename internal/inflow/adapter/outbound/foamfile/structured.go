package foamfile

import (
	"fmt"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StructurePoints arranges raw face centres (x, y, z per entry) into a grid.
// Points are sorted along y, split into rows of equal y, and each row is
// sorted along z. The options then add, drop or relabel boundary rows.
func StructurePoints(raw [][]float64, opts domain.StructuredOptions) (*domain.StructuredPoints, error) {
	n := len(raw)
	if n == 0 {
		return nil, fmt.Errorf("%w: no points", ErrNotStructured)
	}
	for i, p := range raw {
		if len(p) != 3 {
			return nil, fmt.Errorf("%w: point %d has %d components", ErrMalformed, i, len(p))
		}
	}

	y := make([]float64, n)
	for i, p := range raw {
		y[i] = p[1]
	}
	yInd := make([]int, n)
	floats.ArgsortStable(y, yInd)

	nz := 0
	for nz < n && y[nz] == y[0] {
		nz++
	}
	if n%nz != 0 {
		return nil, fmt.Errorf("%w: %d points cannot be split into rows of %d", ErrNotStructured, n, nz)
	}
	if nz < 2 {
		return nil, fmt.Errorf("%w: a row needs at least two points", ErrNotStructured)
	}
	ny := n / nz

	rowsY := make([][]float64, ny)
	rowsZ := make([][]float64, ny)
	zInd := make([][]int, ny)
	for i := 0; i < ny; i++ {
		zs := make([]float64, nz)
		ys := make([]float64, nz)
		for j := 0; j < nz; j++ {
			p := raw[yInd[i*nz+j]]
			ys[j], zs[j] = p[1], p[2]
		}
		ind := make([]int, nz)
		floats.ArgsortStable(zs, ind)
		rowsY[i] = permute(ys, ind)
		rowsZ[i] = zs
		zInd[i] = ind
	}

	if opts.AddValBot != nil {
		rowsY = append([][]float64{fill(nz, *opts.AddValBot)}, rowsY...)
		rowsZ = append([][]float64{clone(rowsZ[0])}, rowsZ...)
	}
	if opts.AddValTop != nil {
		rowsY = append(rowsY, fill(nz, *opts.AddValTop))
		rowsZ = append(rowsZ, clone(rowsZ[len(rowsZ)-1]))
	}

	lo, hi, err := keptRows(len(rowsY), opts)
	if err != nil {
		return nil, err
	}
	rowsY, rowsZ = rowsY[lo:hi], rowsZ[lo:hi]

	if opts.ExchangeValBot != nil {
		rowsY[0] = fill(nz, *opts.ExchangeValBot)
	}
	if opts.ExchangeValTop != nil {
		rowsY[len(rowsY)-1] = fill(nz, *opts.ExchangeValTop)
	}

	return &domain.StructuredPoints{
		X:    raw[0][0],
		Y:    toDense(rowsY),
		Z:    toDense(rowsZ),
		YInd: yInd,
		ZInd: zInd,
	}, nil
}

// StructureVelocity arranges raw velocity sampled on the points that produced
// grid, applying the same permutation and row manipulation.
func StructureVelocity(raw [][]float64, grid *domain.StructuredPoints, opts domain.StructuredOptions) (*domain.VectorField, error) {
	n := len(grid.YInd)
	if len(raw) != n {
		return nil, fmt.Errorf("%w: %d velocity values for %d points", domain.ErrShapeMismatch, len(raw), n)
	}
	for i, u := range raw {
		if len(u) != 3 {
			return nil, fmt.Errorf("%w: value %d has %d components", ErrMalformed, i, len(u))
		}
	}

	ny := len(grid.ZInd)
	nz := n / ny
	rows := make([][]domain.Vector, ny)
	for i := 0; i < ny; i++ {
		row := make([]domain.Vector, nz)
		for j := 0; j < nz; j++ {
			u := raw[grid.YInd[i*nz+grid.ZInd[i][j]]]
			row[j] = domain.Vector{u[0], u[1], u[2]}
		}
		rows[i] = row
	}

	if opts.AddValBot != nil {
		rows = append([][]domain.Vector{fillVec(nz, opts.VelocityBot)}, rows...)
	}
	if opts.AddValTop != nil {
		rows = append(rows, fillVec(nz, opts.VelocityTop))
	}

	lo, hi, err := keptRows(len(rows), opts)
	if err != nil {
		return nil, err
	}
	if opts.InterpValTop && hi < len(rows) {
		rows[hi-1] = midpoint(rows[hi-1], rows[hi])
	}
	if opts.InterpValBot && lo > 0 {
		rows[lo] = midpoint(rows[lo-1], rows[lo])
	}
	rows = rows[lo:hi]

	field, err := domain.NewVectorField(len(rows), nz)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, u := range row {
			field.UX.Set(i, j, u[0])
			field.UY.Set(i, j, u[1])
			field.UZ.Set(i, j, u[2])
		}
	}
	return field, nil
}

func keptRows(total int, opts domain.StructuredOptions) (int, int, error) {
	if opts.ExcludeBot < 0 || opts.ExcludeTop < 0 {
		return 0, 0, fmt.Errorf("%w: negative row exclusion", ErrNotStructured)
	}
	lo, hi := opts.ExcludeBot, total-opts.ExcludeTop
	if hi-lo < 1 {
		return 0, 0, fmt.Errorf("%w: excluding %d bottom and %d top rows leaves nothing of %d",
			ErrNotStructured, opts.ExcludeBot, opts.ExcludeTop, total)
	}
	return lo, hi, nil
}

func permute(values []float64, ind []int) []float64 {
	out := make([]float64, len(ind))
	for j, k := range ind {
		out[j] = values[k]
	}
	return out
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func fillVec(n int, v *domain.Vector) []domain.Vector {
	out := make([]domain.Vector, n)
	if v == nil {
		return out
	}
	for i := range out {
		out[i] = *v
	}
	return out
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func midpoint(a, b []domain.Vector) []domain.Vector {
	out := make([]domain.Vector, len(a))
	for j := range a {
		for k := 0; k < 3; k++ {
			out[j][k] = 0.5 * (a[j][k] + b[j][k])
		}
	}
	return out
}

func toDense(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}
