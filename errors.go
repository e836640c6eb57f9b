package opinf

import "github.com/yyyoichi/opinf/internal/check"

// Every error returned by this package wraps exactly one of these, so callers
// can match with errors.Is.
var (
	// ErrInvalidArgument reports a malformed input: wrong dimensionality,
	// unknown mode or order, a malformed regularizer or a bad option value.
	ErrInvalidArgument = check.ErrInvalidArgument
	// ErrShapeMismatch reports two inputs whose sizes must agree but do not.
	ErrShapeMismatch = check.ErrShapeMismatch
	// ErrNumericalFailure reports a factorization or iterative solver failure.
	ErrNumericalFailure = check.ErrNumericalFailure
)
