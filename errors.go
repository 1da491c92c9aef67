package graphoptim

import "fmt"

// ErrInvalidInput signifies a contract violation in the input to an
// estimator: an empty view_pairs, fewer than two views, or a
// global_rotations map missing an entry for a view that appears in
// view_pairs.
type ErrInvalidInput struct {
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("graphoptim: invalid input: %s", e.Reason)
}

// ErrNumericalFailure signifies that a Cholesky analysis/factorization or
// an eigensolver failed to produce a usable result. The enclosing solve
// aborts with no partial retry when this is returned.
type ErrNumericalFailure struct {
	Operation string
}

func (e *ErrNumericalFailure) Error() string {
	return fmt.Sprintf("graphoptim: numerical failure in %s", e.Operation)
}

// InvalidInputf builds an *ErrInvalidInput from a formatted reason; used by
// every estimator's input validation.
func InvalidInputf(format string, args ...any) error {
	return &ErrInvalidInput{Reason: fmt.Sprintf(format, args...)}
}

// NumericalFailure builds an *ErrNumericalFailure naming the operation that
// failed.
func NumericalFailure(operation string) error {
	return &ErrNumericalFailure{Operation: operation}
}
