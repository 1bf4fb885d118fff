package diffeq

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates an equation definition that violates a model invariant.
	ErrMalformed = errors.New("diffeq: malformed equation")

	// ErrNoDiffusion indicates a diffusion request against a deterministic equation.
	ErrNoDiffusion = errors.New("diffeq: equation has no diffusion term")
)

// FieldError locates a malformation inside an equation definition.
type FieldError struct {
	Equation string
	Field    string
	Reason   string
	Err      error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrMalformed, e.Equation, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}
