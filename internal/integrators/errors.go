package integrators

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMethod indicates a scheme name the registry does not know.
	ErrUnknownMethod = errors.New("integrators: unknown method")

	// ErrCapability indicates a scheme that cannot integrate the given equation
	// under the given options.
	ErrCapability = errors.New("integrators: scheme not applicable")

	// ErrInvalidStep indicates a step size that is not a positive finite number.
	ErrInvalidStep = errors.New("integrators: step size must be positive")

	// ErrNoRandomSource indicates a stochastic step without a random source.
	ErrNoRandomSource = errors.New("integrators: stochastic step needs a random source")

	// ErrArgCount indicates a step call with the wrong number of extra arguments.
	ErrArgCount = errors.New("integrators: wrong number of arguments")

	// ErrNoCode indicates a request for generated code from an integrator
	// built without AheadOfTime.
	ErrNoCode = errors.New("integrators: no generated code (AheadOfTime is off)")
)

// UnknownMethodError names the offending method string.
type UnknownMethodError struct {
	Name string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownMethod, e.Name)
}

func (e *UnknownMethodError) Unwrap() error {
	return ErrUnknownMethod
}

// CapabilityError explains why a scheme rejected an equation.
type CapabilityError struct {
	Scheme string
	Reason string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrCapability, e.Scheme, e.Reason)
}

func (e *CapabilityError) Unwrap() error {
	return ErrCapability
}
