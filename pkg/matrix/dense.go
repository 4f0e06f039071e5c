package matrix

import (
	"fmt"
)

// Dense is a row-major dense MNA system solved by LU decomposition with
// partial pivoting. The same code serves real and complex fields.
type Dense[T Field] struct {
	size int
	a    []T
	rhs  []T
}

var _ System[float64] = (*Dense[float64])(nil)
var _ System[complex128] = (*Dense[complex128])(nil)

func NewDense[T Field](size int) *Dense[T] {
	if size < 0 {
		size = 0
	}
	return &Dense[T]{
		size: size,
		a:    make([]T, size*size),
		rhs:  make([]T, size),
	}
}

func (m *Dense[T]) Size() int { return m.size }

func (m *Dense[T]) inBounds(i int) bool { return i > 0 && i <= m.size }

func (m *Dense[T]) AddElement(i, j int, value T) {
	if !m.inBounds(i) || !m.inBounds(j) {
		return
	}
	m.a[(i-1)*m.size+(j-1)] += value
}

func (m *Dense[T]) AddRHS(i int, value T) {
	if !m.inBounds(i) {
		return
	}
	m.rhs[i-1] += value
}

// Element returns the accumulated value at (i, j), 1-based.
func (m *Dense[T]) Element(i, j int) T {
	var zero T
	if !m.inBounds(i) || !m.inBounds(j) {
		return zero
	}
	return m.a[(i-1)*m.size+(j-1)]
}

// RHS returns the accumulated excitation at row i, 1-based.
func (m *Dense[T]) RHS(i int) T {
	var zero T
	if !m.inBounds(i) {
		return zero
	}
	return m.rhs[i-1]
}

// Solve factors a copy of the matrix, so it may be called repeatedly.
func (m *Dense[T]) Solve() ([]T, error) {
	n := m.size
	if n == 0 {
		return nil, fmt.Errorf("%w: empty system", ErrSingular)
	}

	a := make([]T, len(m.a))
	copy(a, m.a)
	x := make([]T, n)
	copy(x, m.rhs)

	for _, v := range a {
		if !IsFinite(v) {
			return nil, fmt.Errorf("%w: non-finite entry", ErrSingular)
		}
	}

	for k := 0; k < n; k++ {
		pivotRow := k
		pivotMag := magnitude(a[k*n+k])
		for i := k + 1; i < n; i++ {
			if mag := magnitude(a[i*n+k]); mag > pivotMag {
				pivotRow, pivotMag = i, mag
			}
		}
		// Only an exact zero pivot is singular. Ill-conditioned systems
		// are caught by the non-finite check on the solution.
		if pivotMag == 0 {
			return nil, fmt.Errorf("%w: zero pivot at step %d", ErrSingular, k+1)
		}

		if pivotRow != k {
			for j := 0; j < n; j++ {
				a[k*n+j], a[pivotRow*n+j] = a[pivotRow*n+j], a[k*n+j]
			}
			x[k], x[pivotRow] = x[pivotRow], x[k]
		}

		pivot := a[k*n+k]
		for i := k + 1; i < n; i++ {
			factor := a[i*n+k] / pivot
			if magnitude(factor) == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= factor * a[k*n+j]
			}
			x[i] -= factor * x[k]
		}
	}

	// Back substitution on U
	for i := n - 1; i >= 0; i-- {
		sum := x[i]
		for j := i + 1; j < n; j++ {
			sum -= a[i*n+j] * x[j]
		}
		x[i] = sum / a[i*n+i]
	}

	solution := make([]T, n+1)
	for i, v := range x {
		if !IsFinite(v) {
			return nil, fmt.Errorf("%w: non-finite solution at %d", ErrSingular, i+1)
		}
		solution[i+1] = v
	}
	return solution, nil
}
