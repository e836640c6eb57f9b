package check

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrNumericalFailure = errors.New("numerical failure")
)

// Invalid wraps ErrInvalidArgument with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Mismatch wraps ErrShapeMismatch with a formatted message.
func Mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}

// Numerical wraps ErrNumericalFailure with a formatted message.
func Numerical(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNumericalFailure, fmt.Sprintf(format, args...))
}

// Matrix reports whether m holds at least one element.
// A nil interface, a typed nil and an empty *mat.Dense are all rejected.
func Matrix(m mat.Matrix) bool {
	if m == nil {
		return false
	}
	switch v := m.(type) {
	case *mat.Dense:
		if v == nil || v.IsEmpty() {
			return false
		}
	case *mat.VecDense:
		if v == nil || v.IsEmpty() {
			return false
		}
	}
	r, c := m.Dims()
	return r > 0 && c > 0
}

// Vector reports whether v holds at least one element.
func Vector(v mat.Vector) bool {
	if v == nil {
		return false
	}
	if vd, ok := v.(*mat.VecDense); ok && (vd == nil || vd.IsEmpty()) {
		return false
	}
	return v.Len() > 0
}
