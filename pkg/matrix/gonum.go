package matrix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Gonum solves systems with gonum's LU factorisation. gonum has no complex
// LU, so a complex system A·x = b is solved as the real block system
//
//	| Re(A) -Im(A) | | Re(x) |   | Re(b) |
//	| Im(A)  Re(A) | | Im(x) | = | Im(b) |
type Gonum[T Field] struct {
	size      int
	re, im    *mat.Dense
	rhsRe     *mat.VecDense
	rhsIm     *mat.VecDense
	isComplex bool
}

var _ System[float64] = (*Gonum[float64])(nil)
var _ System[complex128] = (*Gonum[complex128])(nil)

func NewGonum[T Field](size int) (*Gonum[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty system", ErrSingular)
	}
	return &Gonum[T]{
		size:      size,
		re:        mat.NewDense(size, size, nil),
		im:        mat.NewDense(size, size, nil),
		rhsRe:     mat.NewVecDense(size, nil),
		rhsIm:     mat.NewVecDense(size, nil),
		isComplex: isComplex[T](),
	}, nil
}

func (m *Gonum[T]) Size() int { return m.size }

func (m *Gonum[T]) inBounds(i int) bool { return i > 0 && i <= m.size }

func (m *Gonum[T]) AddElement(i, j int, value T) {
	if !m.inBounds(i) || !m.inBounds(j) {
		return
	}
	c := toComplex(value)
	m.re.Set(i-1, j-1, m.re.At(i-1, j-1)+real(c))
	m.im.Set(i-1, j-1, m.im.At(i-1, j-1)+imag(c))
}

func (m *Gonum[T]) AddRHS(i int, value T) {
	if !m.inBounds(i) {
		return
	}
	c := toComplex(value)
	m.rhsRe.SetVec(i-1, m.rhsRe.AtVec(i-1)+real(c))
	m.rhsIm.SetVec(i-1, m.rhsIm.AtVec(i-1)+imag(c))
}

func (m *Gonum[T]) Solve() ([]T, error) {
	n := m.size
	a, b := mat.Matrix(m.re), mat.Vector(m.rhsRe)
	if m.isComplex {
		block := mat.NewDense(2*n, 2*n, nil)
		for i := range n {
			for j := range n {
				re, im := m.re.At(i, j), m.im.At(i, j)
				block.Set(i, j, re)
				block.Set(i, n+j, -im)
				block.Set(n+i, j, im)
				block.Set(n+i, n+j, re)
			}
		}
		rhs := mat.NewVecDense(2*n, nil)
		for i := range n {
			rhs.SetVec(i, m.rhsRe.AtVec(i))
			rhs.SetVec(n+i, m.rhsIm.AtVec(i))
		}
		a, b = block, rhs
	}

	rows, _ := a.Dims()
	for i := range rows {
		for j := range rows {
			if !IsFinite(a.At(i, j)) {
				return nil, fmt.Errorf("%w: non-finite entry", ErrSingular)
			}
		}
	}

	var lu mat.LU
	lu.Factorize(a)
	if logDet, _ := lu.LogDet(); math.IsInf(logDet, -1) {
		return nil, fmt.Errorf("%w: zero pivot", ErrSingular)
	}

	// A Condition error only reports a large condition number. The solution
	// is still computed, so blow-ups are left to the non-finite check below.
	x := mat.NewVecDense(rows, nil)
	if err := lu.SolveVecTo(x, false, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}

	solution := make([]T, n+1)
	for i := range n {
		c := complex(x.AtVec(i), 0)
		if m.isComplex {
			c = complex(x.AtVec(i), x.AtVec(n+i))
		}
		if !IsFinite(c) {
			return nil, fmt.Errorf("%w: non-finite solution at %d", ErrSingular, i+1)
		}
		solution[i+1] = fromComplex[T](c)
	}
	return solution, nil
}
