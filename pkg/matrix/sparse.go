package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// Sparse wraps a github.com/edp1096/sparse matrix. Complex systems keep the
// real and imaginary right-hand sides in separated vectors.
type Sparse[T Field] struct {
	size      int
	matrix    *sparse.Matrix
	rhs       []float64
	rhsImag   []float64
	isComplex bool
}

var _ System[float64] = (*Sparse[float64])(nil)
var _ System[complex128] = (*Sparse[complex128])(nil)

func NewSparse[T Field](size int) (*Sparse[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty system", ErrSingular)
	}

	isComplex := isComplex[T]()
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: true,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &Sparse[T]{
		size:      size,
		matrix:    mat,
		rhs:       make([]float64, size+1), // 1-based indexing
		rhsImag:   make([]float64, size+1),
		isComplex: isComplex,
	}, nil
}

func (m *Sparse[T]) Size() int { return m.size }

func (m *Sparse[T]) AddElement(i, j int, value T) {
	if i <= 0 || j <= 0 || i > m.size || j > m.size {
		return
	}
	element := m.matrix.GetElement(int64(i), int64(j))
	if element == nil {
		return
	}
	switch v := any(value).(type) {
	case float32:
		element.Real += float64(v)
	case float64:
		element.Real += v
	case complex64:
		element.Real += float64(real(v))
		element.Imag += float64(imag(v))
	case complex128:
		element.Real += real(v)
		element.Imag += imag(v)
	}
}

func (m *Sparse[T]) AddRHS(i int, value T) {
	if i <= 0 || i > m.size {
		return
	}
	switch v := any(value).(type) {
	case float32:
		m.rhs[i] += float64(v)
	case float64:
		m.rhs[i] += v
	case complex64:
		m.rhs[i] += float64(real(v))
		m.rhsImag[i] += float64(imag(v))
	case complex128:
		m.rhs[i] += real(v)
		m.rhsImag[i] += imag(v)
	}
}

// Solve factors the matrix in place; a Sparse system is solved once.
func (m *Sparse[T]) Solve() (solution []T, err error) {
	// The library dereferences missing diagonals on some singular
	// structures instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			solution, err = nil, fmt.Errorf("%w: %v", ErrSingular, r)
		}
	}()
	defer m.matrix.Destroy()

	if err := m.matrix.Factor(); err != nil {
		return nil, fmt.Errorf("%w: factorization failed: %v", ErrSingular, err)
	}

	solution = make([]T, m.size+1)
	if m.isComplex {
		re, im, err := m.matrix.SolveComplex(m.rhs, m.rhsImag)
		if err != nil {
			return nil, fmt.Errorf("%w: solve failed: %v", ErrSingular, err)
		}
		for i := 1; i <= m.size; i++ {
			solution[i] = fromComplex[T](complex(re[i], im[i]))
		}
	} else {
		x, err := m.matrix.Solve(m.rhs)
		if err != nil {
			return nil, fmt.Errorf("%w: solve failed: %v", ErrSingular, err)
		}
		for i := 1; i <= m.size; i++ {
			solution[i] = fromComplex[T](complex(x[i], 0))
		}
	}

	for i := 1; i <= m.size; i++ {
		if !IsFinite(solution[i]) {
			return nil, fmt.Errorf("%w: non-finite solution at %d", ErrSingular, i)
		}
	}
	return solution, nil
}
