package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Stepper advances a state by one fixed step. *integrators.Integrator
// satisfies it.
type Stepper interface {
	Step(src rand.Source, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value, error)
	Dt() float64
	Name() string
}

// StepFunc is the signature of Stepper.Step.
type StepFunc func(src rand.Source, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value, error)

// CodeStepper can also step through its generated code unit.
type CodeStepper interface {
	Stepper
	StepCode(src rand.Source, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value, error)
}

type Metric interface {
	Name() string
	Observe(y dynamo.Value, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(y dynamo.Value, aux []dynamo.Value, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(y dynamo.Value, aux []dynamo.Value, t float64)

func (f ObserverFunc) OnStep(y dynamo.Value, aux []dynamo.Value, t float64) { f(y, aux, t) }

type Config struct {
	Duration float64
	Seed     int64
	// Stream separates runs sharing a seed.
	Stream uint64
	// Args are the extra arguments passed to every step.
	Args []dynamo.Value
	// Code steps through the generated unit instead of the closure.
	Code          bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	Method     string
	Times      []float64
	States     []dynamo.Value
	Aux        [][]dynamo.Value
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.Value {
	return r.States[len(r.States)-1]
}

// Column returns component i of every recorded state.
func (r *Result) Column(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		out[k] = s.At(i)
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

// Unwrap reports invalid states as dynamo.ErrInvalidState.
func (e SimError) Unwrap() error {
	return dynamo.ErrInvalidState
}
