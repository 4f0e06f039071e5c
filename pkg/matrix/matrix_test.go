package matrix

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

const tolerance = 1e-9

func stampReal(t *testing.T, sys System[float64], a [][]float64, b []float64) {
	t.Helper()
	for i, row := range a {
		for j, v := range row {
			if v != 0 {
				sys.AddElement(i+1, j+1, v)
			}
		}
		sys.AddRHS(i+1, b[i])
	}
}

func TestSolveReal(t *testing.T) {
	// A = [[2, 3, 1], [1, 2, 3], [3, 1, 2]], b = [9, 6, 8]
	a := [][]float64{{2, 3, 1}, {1, 2, 3}, {3, 1, 2}}
	b := []float64{9, 6, 8}
	expected := []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}

	for _, backend := range []Backend{BackendDense, BackendSparse, BackendGonum} {
		t.Run(string(backend), func(t *testing.T) {
			sys, err := New[float64](backend, 3)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			stampReal(t, sys, a, b)

			x, err := sys.Solve()
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			if len(x) != 4 {
				t.Fatalf("len(x) = %d, want 4", len(x))
			}
			if x[0] != 0 {
				t.Errorf("x[0] = %v, want 0 (ground)", x[0])
			}
			for i, want := range expected {
				if math.Abs(x[i+1]-want) > tolerance {
					t.Errorf("x[%d] = %v, want %v", i+1, x[i+1], want)
				}
			}
		})
	}
}

func TestSolveComplex(t *testing.T) {
	// [[1+2j, -j], [-j, 2]] x = [1, 0]
	a := [][]complex128{{complex(1, 2), complex(0, -1)}, {complex(0, -1), 2}}
	b := []complex128{1, 0}

	// x2 = j*x1/2, (1+2j)x1 - j*(j*x1/2) = 1 => x1 = 1/(1.5+2j)
	x1 := 1 / complex(1.5, 2)
	expected := []complex128{x1, complex(0, 1) * x1 / 2}

	for _, backend := range []Backend{BackendDense, BackendSparse, BackendGonum} {
		t.Run(string(backend), func(t *testing.T) {
			sys, err := New[complex128](backend, 2)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for i, row := range a {
				for j, v := range row {
					sys.AddElement(i+1, j+1, v)
				}
				sys.AddRHS(i+1, b[i])
			}

			x, err := sys.Solve()
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			for i, want := range expected {
				if cmplx.Abs(x[i+1]-want) > tolerance {
					t.Errorf("x[%d] = %v, want %v", i+1, x[i+1], want)
				}
			}
		})
	}
}

func TestDenseGroundStampsDropped(t *testing.T) {
	sys := NewDense[float64](2)
	sys.AddElement(0, 1, 5)
	sys.AddElement(1, 0, 5)
	sys.AddElement(0, 0, 5)
	sys.AddRHS(0, 5)
	sys.AddElement(3, 1, 5)
	sys.AddElement(1, 1, 2)

	if got := sys.Element(1, 1); got != 2 {
		t.Errorf("Element(1,1) = %v, want 2", got)
	}
	if got := sys.Element(2, 2); got != 0 {
		t.Errorf("Element(2,2) = %v, want 0", got)
	}
	if got := sys.RHS(1); got != 0 {
		t.Errorf("RHS(1) = %v, want 0", got)
	}
}

func TestDenseSolveIsRepeatable(t *testing.T) {
	sys := NewDense[float64](2)
	stampReal(t, sys, [][]float64{{4, 1}, {1, 3}}, []float64{1, 2})

	first, err := sys.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	second, err := sys.Solve()
	if err != nil {
		t.Fatalf("second Solve failed: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("solution[%d] changed between solves: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDenseRequiresPivoting(t *testing.T) {
	// Voltage-source style block: zero on the diagonal.
	sys := NewDense[float64](2)
	stampReal(t, sys, [][]float64{{0, 1}, {1, 0}}, []float64{3, 7})

	x, err := sys.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if x[1] != 7 || x[2] != 3 {
		t.Errorf("x = %v, want [0 7 3]", x)
	}
}

func TestDenseSingular(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
	}{
		{"zero matrix", [][]float64{{0, 0}, {0, 0}}},
		{"floating pair", [][]float64{{1e-3, -1e-3}, {-1e-3, 1e-3}}},
		{"dependent rows", [][]float64{{1, 2}, {2, 4}}},
		{"non-finite entry", [][]float64{{math.Inf(1), 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := NewDense[float64](2)
			stampReal(t, sys, tt.a, []float64{1, 1})
			if _, err := sys.Solve(); !errors.Is(err, ErrSingular) {
				t.Errorf("Solve error = %v, want ErrSingular", err)
			}
		})
	}
}

func TestEmptySystem(t *testing.T) {
	if _, err := NewDense[float64](0).Solve(); !errors.Is(err, ErrSingular) {
		t.Errorf("dense empty Solve error = %v, want ErrSingular", err)
	}
	if _, err := New[complex128](BackendSparse, 0); !errors.Is(err, ErrSingular) {
		t.Errorf("sparse empty New error = %v, want ErrSingular", err)
	}
	if _, err := New[float64](BackendGonum, 0); !errors.Is(err, ErrSingular) {
		t.Errorf("gonum empty New error = %v, want ErrSingular", err)
	}
}

func TestSparseSingular(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
		b    []float64
	}{
		{"zero matrix", [][]float64{{0, 0}, {0, 0}}, []float64{1, 1}},
		{"floating pair", [][]float64{{1e-3, -1e-3}, {-1e-3, 1e-3}}, []float64{1, 1}},
		{"dependent rows", [][]float64{{1, 2}, {2, 4}}, []float64{1, 1}},
		{"overflowing solution", [][]float64{{1e-300, 0}, {0, 1}}, []float64{1e300, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := NewSparse[float64](2)
			if err != nil {
				t.Fatalf("NewSparse failed: %v", err)
			}
			stampReal(t, sys, tt.a, tt.b)
			if _, err := sys.Solve(); !errors.Is(err, ErrSingular) {
				t.Errorf("Solve error = %v, want ErrSingular", err)
			}
		})
	}
}

func TestSparseComplexSingular(t *testing.T) {
	sys, err := NewSparse[complex128](2)
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}
	sys.AddElement(1, 1, complex(0, 1e-3))
	sys.AddElement(1, 2, complex(0, -1e-3))
	sys.AddElement(2, 1, complex(0, -1e-3))
	sys.AddElement(2, 2, complex(0, 1e-3))
	sys.AddRHS(1, 1)
	if _, err := sys.Solve(); !errors.Is(err, ErrSingular) {
		t.Errorf("Solve error = %v, want ErrSingular", err)
	}
}

func TestGonumSingular(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
	}{
		{"zero matrix", [][]float64{{0, 0}, {0, 0}}},
		{"dependent rows", [][]float64{{1, 2}, {2, 4}}},
		{"non-finite entry", [][]float64{{math.NaN(), 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := NewGonum[float64](2)
			if err != nil {
				t.Fatalf("NewGonum failed: %v", err)
			}
			stampReal(t, sys, tt.a, []float64{1, 1})
			if _, err := sys.Solve(); !errors.Is(err, ErrSingular) {
				t.Errorf("Solve error = %v, want ErrSingular", err)
			}
		})
	}
}

func TestGonumComplexSingular(t *testing.T) {
	// [[j, 1], [1, -j]] has determinant -j*j - 1 = 0
	sys, err := NewGonum[complex128](2)
	if err != nil {
		t.Fatalf("NewGonum failed: %v", err)
	}
	sys.AddElement(1, 1, complex(0, 1))
	sys.AddElement(1, 2, 1)
	sys.AddElement(2, 1, 1)
	sys.AddElement(2, 2, complex(0, -1))
	sys.AddRHS(1, 1)
	if _, err := sys.Solve(); !errors.Is(err, ErrSingular) {
		t.Errorf("Solve error = %v, want ErrSingular", err)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"", BackendDense, false},
		{"dense", BackendDense, false},
		{"sparse", BackendSparse, false},
		{"gonum", BackendGonum, false},
		{"cholesky", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Error("IsFinite(1.5) = false")
	}
	if IsFinite(math.NaN()) {
		t.Error("IsFinite(NaN) = true")
	}
	if IsFinite(complex(0, math.Inf(-1))) {
		t.Error("IsFinite(-Inf j) = true")
	}
}
