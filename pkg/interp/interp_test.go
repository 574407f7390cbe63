package interp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

func TestLinear(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		in   []float64
		want []float64
	}{
		{
			name: "increasing",
			xs:   []float64{0, 1, 3},
			ys:   []float64{0, 10, 30},
			in:   []float64{0.5, 2, 3},
			want: []float64{5, 20, 30},
		},
		{
			name: "decreasing input is reversed",
			xs:   []float64{3, 1, 0},
			ys:   []float64{30, 10, 0},
			in:   []float64{0.5, 2},
			want: []float64{5, 20},
		},
		{
			name: "clamped outside range",
			xs:   []float64{1, 2},
			ys:   []float64{4, 8},
			in:   []float64{-5, 0.999, 2.5},
			want: []float64{4, 4, 8},
		},
	}

	approx := cmpopts.EquateApprox(0, 1e-12)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLinear(tt.xs, tt.ys)
			if err != nil {
				t.Fatalf("NewLinear failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, l.Eval(tt.in), approx); diff != "" {
				t.Errorf("Eval mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinear_Errors(t *testing.T) {
	if _, err := NewLinear([]float64{1}, []float64{1}); err != ErrTooFewPoints {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := NewLinear([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := NewLinear([]float64{0, 1, 1, 2}, []float64{0, 1, 2, 3}); err != ErrNotIncreasing {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
}

func TestBilinear(t *testing.T) {
	// f(x, y) = x + 10y sampled on a 3x2 grid.
	xs := []float64{0, 1}
	ys := []float64{0, 1, 2}
	values := mat.NewDense(3, 2, []float64{
		0, 1,
		10, 11,
		20, 21,
	})

	b, err := NewBilinear(xs, ys, values)
	if err != nil {
		t.Fatalf("NewBilinear failed: %v", err)
	}

	tests := []struct {
		x, y, want float64
	}{
		{0, 0, 0},
		{0.5, 0.5, 5.5},
		{0.25, 1.5, 15.25},
		{1, 2, 21},
		{-1, -1, 0},
		{5, 0.5, 6},
		{0.5, 9, 20.5},
	}
	for _, tt := range tests {
		if got := b.At(tt.x, tt.y); !cmp.Equal(got, tt.want, cmpopts.EquateApprox(0, 1e-12)) {
			t.Errorf("At(%g, %g) = %g, want %g", tt.x, tt.y, got, tt.want)
		}
	}

	grid := b.Grid([]float64{0, 0.5}, []float64{0.5})
	if diff := cmp.Diff([]float64{5, 5.5}, grid.RawRowView(0), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Grid mismatch (-want +got):\n%s", diff)
	}
}

func TestBilinear_Errors(t *testing.T) {
	values := mat.NewDense(2, 2, nil)
	if _, err := NewBilinear([]float64{0, 1, 2}, []float64{0, 1}, values); err == nil {
		t.Fatal("expected shape error")
	}
	if _, err := NewBilinear([]float64{1, 0}, []float64{0, 1}, values); err != ErrNotIncreasing {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
}
