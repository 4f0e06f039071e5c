package matrix

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/exp/constraints"
)

// Field is the scalar type of a linear system. float64 is used for transient
// steps and complex128 for phasor analysis.
type Field interface {
	constraints.Float | constraints.Complex
}

// ErrSingular is returned when a system cannot be solved.
var ErrSingular = errors.New("matrix is singular")

// DeviceMatrix is what a device stamps into. Indices are 1-based. Row or
// column 0 is ground and is dropped.
type DeviceMatrix[T Field] interface {
	AddElement(i, j int, value T)
	AddRHS(i int, value T)
}

// System is an assembled MNA system ready to be solved.
type System[T Field] interface {
	DeviceMatrix[T]
	Size() int
	// Solve returns the solution as a 1-based slice of length Size()+1 whose
	// element 0 (ground) is always zero.
	Solve() ([]T, error)
}

type Backend string

const (
	BackendDense  Backend = "dense"
	BackendSparse Backend = "sparse"
	BackendGonum  Backend = "gonum"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendDense:
		return BackendDense, nil
	case BackendSparse:
		return BackendSparse, nil
	case BackendGonum:
		return BackendGonum, nil
	}
	return "", fmt.Errorf("unknown solver backend %q", s)
}

// New creates an empty system of the given size on the chosen backend.
func New[T Field](backend Backend, size int) (System[T], error) {
	switch backend {
	case "", BackendDense:
		return NewDense[T](size), nil
	case BackendSparse:
		return NewSparse[T](size)
	case BackendGonum:
		return NewGonum[T](size)
	}
	return nil, fmt.Errorf("unknown solver backend %q", backend)
}

func magnitude[T Field](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// IsFinite reports whether v has no NaN or infinite component.
func IsFinite[T Field](v T) bool {
	switch x := any(v).(type) {
	case float32:
		return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case complex64:
		return !cmplx.IsNaN(complex128(x)) && !cmplx.IsInf(complex128(x))
	case complex128:
		return !cmplx.IsNaN(x) && !cmplx.IsInf(x)
	}
	return false
}

func isComplex[T Field]() bool {
	var zero T
	switch any(zero).(type) {
	case complex64, complex128:
		return true
	}
	return false
}

func toComplex[T Field](v T) complex128 {
	switch x := any(v).(type) {
	case float32:
		return complex(float64(x), 0)
	case float64:
		return complex(x, 0)
	case complex64:
		return complex128(x)
	case complex128:
		return x
	}
	return 0
}

// fromComplex drops the imaginary part for real fields.
func fromComplex[T Field](v complex128) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = float32(real(v))
	case *float64:
		*p = real(v)
	case *complex64:
		*p = complex64(v)
	case *complex128:
		*p = v
	}
	return out
}
