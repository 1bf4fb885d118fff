package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for value operations.
var (
	// ErrInvalidState indicates a state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an elementwise operation on arrays of different lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrEmptyValue indicates an array value with no elements where one is required.
	ErrEmptyValue = errors.New("dynamo: empty value")
)

// ShapeError is the panic value raised by elementwise arithmetic on
// incompatible operands, in the manner of gonum's mat.ErrShape.
type ShapeError struct {
	Op          string
	Left, Right int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s of length %d and %d", ErrDimensionMismatch, e.Op, e.Left, e.Right)
}

func (e *ShapeError) Unwrap() error {
	return ErrDimensionMismatch
}
