package integrators

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
)

// Kind enumerates the integration schemes.
type Kind int

const (
	Euler Kind = iota
	Heun
	Midpoint
	RK2
	RK3
	RK4
	RK4Alternative
	ExponentialEuler
	MilsteinIto
	MilsteinStra
)

var kindNames = [...]string{
	Euler:            "euler",
	Heun:             "heun",
	Midpoint:         "midpoint",
	RK2:              "rk2",
	RK3:              "rk3",
	RK4:              "rk4",
	RK4Alternative:   "rk4_alternative",
	ExponentialEuler: "exponential",
	MilsteinIto:      "milstein_ito",
	MilsteinStra:     "milstein_stra",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every scheme kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ODEOnly reports whether the kind rejects stochastic equations.
func (k Kind) ODEOnly() bool {
	switch k {
	case Midpoint, RK2, RK3, RK4, RK4Alternative:
		return true
	}
	return false
}

// DefaultBeta is Ralston's weight for the parametric RK2.
const DefaultBeta = 2.0 / 3.0

// Scheme is a scheme kind with its parameters. Beta only applies to RK2;
// zero selects DefaultBeta.
type Scheme struct {
	Kind Kind
	Beta float64
}

func (s Scheme) String() string {
	if s.Kind == RK2 && s.beta() != DefaultBeta {
		return fmt.Sprintf("rk2(beta=%g)", s.beta())
	}
	return s.Kind.String()
}

func (s Scheme) beta() float64 {
	if s.Beta == 0 {
		return DefaultBeta
	}
	return s.Beta
}

// Options is the configuration every constructor receives.
type Options struct {
	// Dt is the fixed step size; it must be positive.
	Dt float64
	// AheadOfTime also builds the generated code unit.
	AheadOfTime bool
	// Fused marks that units are merged into one routine. ExponentialEuler
	// requires it.
	Fused bool
}

type stepFunc func(src rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error)

// Integrator is one scheme bound to one equation. It holds no state between
// calls and may be shared across goroutines.
type Integrator struct {
	scheme Scheme
	eq     *diffeq.Equation
	opts   Options
	step   stepFunc
	unit   *codegen.Unit
}

// Build validates the combination of scheme, equation and options, then
// builds the step closure and, under AheadOfTime, the code unit.
func (s Scheme) Build(eq *diffeq.Equation, opts Options) (*Integrator, error) {
	if eq == nil {
		return nil, fmt.Errorf("integrators: %s: nil equation", s)
	}
	if !(opts.Dt > 0) || math.IsInf(opts.Dt, 0) {
		return nil, fmt.Errorf("%w: dt = %g", ErrInvalidStep, opts.Dt)
	}
	if err := s.check(eq, opts); err != nil {
		return nil, err
	}

	ev, err := newEvaluators(eq)
	if err != nil {
		return nil, err
	}

	dt := opts.Dt
	in := &Integrator{scheme: s, eq: eq, opts: opts}
	switch s.Kind {
	case Euler:
		in.step = eulerStep(ev, dt)
	case Heun:
		in.step = heunStep(ev, dt)
	case Midpoint:
		in.step = rk2Tableau(0.5).closure(ev, dt)
	case RK2:
		in.step = rk2Tableau(s.beta()).closure(ev, dt)
	case RK3:
		in.step = rk3Tableau.closure(ev, dt)
	case RK4:
		in.step = rk4Tableau.closure(ev, dt)
	case RK4Alternative:
		in.step = rk4AltTableau.closure(ev, dt)
	case ExponentialEuler:
		in.step = exponentialStep(ev, dt)
	case MilsteinIto:
		in.step = milsteinStep(ev, dt, false)
	case MilsteinStra:
		in.step = milsteinStep(ev, dt, true)
	default:
		return nil, fmt.Errorf("integrators: unhandled scheme %s", s)
	}

	if opts.AheadOfTime {
		if in.unit, err = s.code(eq, dt); err != nil {
			return nil, fmt.Errorf("integrators: %s code for %s: %w", s, eq.FuncName(), err)
		}
	}

	logger().Debug("integrator built",
		"scheme", s.String(),
		"equation", eq.FuncName(),
		"dt", dt,
		"stochastic", eq.IsStochastic(),
		"aot", opts.AheadOfTime)
	return in, nil
}

func (s Scheme) check(eq *diffeq.Equation, opts Options) error {
	switch {
	case s.Kind.ODEOnly() && eq.IsStochastic():
		return &CapabilityError{Scheme: s.String(), Reason: "does not support stochastic equations"}
	case s.Kind == RK2 && !(s.beta() > 0):
		return &CapabilityError{Scheme: s.String(), Reason: "beta must be positive"}
	case s.Kind == ExponentialEuler && !opts.Fused:
		return &CapabilityError{Scheme: s.String(), Reason: "requires fused integral mode"}
	case s.Kind == ExponentialEuler && !eq.IsMultiReturn():
		return &CapabilityError{Scheme: s.String(), Reason: "equation must return its linear coefficient"}
	}
	return nil
}

func (s Scheme) code(eq *diffeq.Equation, dt float64) (*codegen.Unit, error) {
	b := codegen.NewBuilder(eq)
	switch s.Kind {
	case Euler:
		eulerCode(b, eq, dt)
	case Heun:
		heunCode(b, eq, dt)
	case Midpoint:
		rk2Tableau(0.5).code(b, eq, dt)
	case RK2:
		rk2Tableau(s.beta()).code(b, eq, dt)
	case RK3:
		rk3Tableau.code(b, eq, dt)
	case RK4:
		rk4Tableau.code(b, eq, dt)
	case RK4Alternative:
		rk4AltTableau.code(b, eq, dt)
	case ExponentialEuler:
		exponentialCode(b, eq, dt)
	case MilsteinIto:
		milsteinCode(b, eq, dt, false)
	case MilsteinStra:
		milsteinCode(b, eq, dt, true)
	default:
		return nil, fmt.Errorf("unhandled scheme %s", s)
	}
	return b.Unit()
}

// Step advances y from t to t+dt. It returns the new state and the
// auxiliary returns of the equation. src is required for stochastic
// equations and ignored otherwise.
func (in *Integrator) Step(src rand.Source, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
	if err := in.checkCall(src, y, args); err != nil {
		return nil, nil, err
	}
	return in.step(src, y, t, args)
}

// StepCode advances y by interpreting the generated unit instead of the
// closure. It requires AheadOfTime.
func (in *Integrator) StepCode(src rand.Source, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
	if in.unit == nil {
		return nil, nil, ErrNoCode
	}
	if err := in.checkCall(src, y, args); err != nil {
		return nil, nil, err
	}
	env, err := in.UnitInputs(y, t, args...)
	if err != nil {
		return nil, nil, err
	}
	res, err := in.unit.Eval(src, env)
	if err != nil {
		return nil, nil, err
	}
	return res[0][0], res[0][1:], nil
}

func (in *Integrator) checkCall(src rand.Source, y dynamo.Value, args []dynamo.Value) error {
	if err := in.checkArgs(y, args); err != nil {
		return err
	}
	if src == nil && in.eq.IsStochastic() {
		return ErrNoRandomSource
	}
	return nil
}

func (in *Integrator) checkArgs(y dynamo.Value, args []dynamo.Value) error {
	if y == nil || y.Len() == 0 {
		return dynamo.ErrEmptyValue
	}
	if want := len(in.eq.FuncArgs()); len(args) != want {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrArgCount, in.eq.FuncName(), want, len(args))
	}
	return nil
}

// UnitInputs binds the inputs of the code unit for a call at (y, t, args).
// It fails like Step on an empty state or a wrong argument count.
func (in *Integrator) UnitInputs(y dynamo.Value, t float64, args ...dynamo.Value) (map[string]dynamo.Value, error) {
	if err := in.checkArgs(y, args); err != nil {
		return nil, err
	}
	env := map[string]dynamo.Value{
		in.eq.VarName():  y,
		in.eq.TimeName(): dynamo.Scalar(t),
	}
	for i, name := range in.eq.FuncArgs() {
		env[in.eq.ArgName(name)] = args[i]
	}
	if in.unit != nil {
		if name, ok := in.unit.Lookup(codegen.SchemeKey(in.eq, noiseParam)); ok {
			env[name] = in.eq.NoiseConstant()
		}
	}
	return env, nil
}

// Code renders the generated unit, or "" without AheadOfTime.
func (in *Integrator) Code() string {
	if in.unit == nil {
		return ""
	}
	return codegen.Render(in.unit)
}

func (in *Integrator) Unit() *codegen.Unit        { return in.unit }
func (in *Integrator) Equation() *diffeq.Equation { return in.eq }
func (in *Integrator) Scheme() Scheme             { return in.scheme }
func (in *Integrator) Options() Options           { return in.opts }
func (in *Integrator) Name() string               { return in.scheme.String() }
func (in *Integrator) Dt() float64                { return in.opts.Dt }

// ParseKind resolves a scheme name case-insensitively. "milstein" is an
// alias of "milstein_ito".
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := aliases[key]; ok {
		return k, nil
	}
	for i, n := range kindNames {
		if n == key {
			return Kind(i), nil
		}
	}
	return 0, &UnknownMethodError{Name: name}
}
