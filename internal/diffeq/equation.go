package diffeq

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// Part selects the drift or the diffusion assignment list.
type Part int

const (
	Drift Part = iota
	Diffusion
)

func (p Part) String() string {
	if p == Diffusion {
		return "diffusion"
	}
	return "drift"
}

// Equation is an immutable, validated equation model.
type Equation struct {
	spec      Spec
	drift     []symbolic.Assign
	diffusion []symbolic.Assign
	noise     dynamo.Value
}

// New validates spec and builds the equation. Name defaults to Var and Time
// to "t".
func New(spec Spec) (*Equation, error) {
	spec = normalize(spec)
	eq := &Equation{spec: spec, noise: spec.Noise.Value()}

	fail := func(field, reason string, err error) (*Equation, error) {
		return nil, &FieldError{Equation: spec.Name, Field: field, Reason: reason, Err: err}
	}

	for _, f := range [][2]string{{"name", spec.Name}, {"var", spec.Var}, {"time", spec.Time}} {
		if err := checkIdent(f[1]); err != "" {
			return fail(f[0], err, nil)
		}
	}
	if spec.Var == spec.Time {
		return fail("time", "shadows the state variable", nil)
	}

	reserved := map[string]string{spec.Var: "state variable", spec.Time: "time"}
	for _, arg := range spec.Args {
		if err := checkIdent(arg); err != "" {
			return fail("args", fmt.Sprintf("%q %s", arg, err), nil)
		}
		if what, ok := reserved[arg]; ok {
			return fail("args", fmt.Sprintf("%q shadows the %s", arg, what), nil)
		}
		reserved[arg] = "argument"
	}

	if len(spec.Drift) == 0 {
		return fail("drift", "no expressions", nil)
	}
	var err error
	if eq.drift, err = symbolic.ParseAssigns(spec.Drift); err != nil {
		return fail("drift", "", err)
	}
	if eq.diffusion, err = symbolic.ParseAssigns(spec.Diffusion); err != nil {
		return fail("diffusion", "", err)
	}
	if spec.Stochastic && len(eq.diffusion) == 0 && eq.noise == nil {
		return fail("diffusion", "stochastic equation without diffusion expressions or noise constant", nil)
	}
	if len(eq.diffusion) > 0 && eq.noise != nil {
		return fail("noise", "both a diffusion list and a constant are set", nil)
	}
	if eq.noise != nil && !dynamo.IsValid(eq.noise) {
		return fail("noise", "not finite", nil)
	}

	driftTemps, reason := checkList(eq.drift, reserved)
	if reason != "" {
		return fail("drift", reason, nil)
	}
	diffTemps, reason := checkList(eq.diffusion, reserved)
	if reason != "" {
		return fail("diffusion", reason, nil)
	}
	for name := range diffTemps {
		if driftTemps[name] {
			return fail("diffusion", fmt.Sprintf("%q is also a drift temporary", name), nil)
		}
	}

	derivative := eq.drift[len(eq.drift)-1].Name
	for _, r := range spec.Returns {
		if !driftTemps[r] || r == derivative {
			return fail("returns", fmt.Sprintf("%q is not a drift temporary", r), nil)
		}
	}
	return eq, nil
}

// MustNew is like New but panics on error. Intended for presets and tests.
func MustNew(spec Spec) *Equation {
	eq, err := New(spec)
	if err != nil {
		panic(err)
	}
	return eq
}

func normalize(spec Spec) Spec {
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Var = strings.TrimSpace(spec.Var)
	spec.Time = strings.TrimSpace(spec.Time)
	if spec.Name == "" {
		spec.Name = spec.Var
	}
	if spec.Time == "" {
		spec.Time = "t"
	}
	spec.Args = slices.Clone(spec.Args)
	spec.Drift = slices.Clone(spec.Drift)
	spec.Diffusion = slices.Clone(spec.Diffusion)
	spec.Noise = slices.Clone(spec.Noise)
	spec.Returns = slices.Clone(spec.Returns)
	return spec
}

func checkIdent(name string) string {
	switch {
	case name == "":
		return "is empty"
	case !token.IsIdentifier(name):
		return "is not an identifier"
	case strings.HasPrefix(name, "_"):
		return "starts with an underscore"
	case strings.Contains(name, "__"):
		return "contains a double underscore"
	}
	return ""
}

// checkList verifies that a list assigns fresh names only and reads nothing
// but reserved names and earlier temporaries.
func checkList(stmts []symbolic.Assign, reserved map[string]string) (map[string]bool, string) {
	temps := make(map[string]bool, len(stmts))
	for _, st := range stmts {
		for _, sym := range symbolic.Symbols(st.Value) {
			if _, ok := reserved[sym]; !ok && !temps[sym] {
				return nil, fmt.Sprintf("%s: undefined symbol %q", st.Name, sym)
			}
		}
		if err := checkIdent(st.Name); err != "" {
			return nil, fmt.Sprintf("%q %s", st.Name, err)
		}
		if what, ok := reserved[st.Name]; ok {
			return nil, fmt.Sprintf("%q shadows the %s", st.Name, what)
		}
		if temps[st.Name] {
			return nil, fmt.Sprintf("%q assigned twice", st.Name)
		}
		temps[st.Name] = true
	}
	return temps, ""
}

func (e *Equation) Spec() Spec         { return normalize(e.spec) }
func (e *Equation) VarName() string    { return e.spec.Var }
func (e *Equation) TimeName() string   { return e.spec.Time }
func (e *Equation) FuncName() string   { return e.spec.Name }
func (e *Equation) FuncArgs() []string { return slices.Clone(e.spec.Args) }
func (e *Equation) Returns() []string  { return slices.Clone(e.spec.Returns) }

// Drift returns the drift assignments as written.
func (e *Equation) Drift() []symbolic.Assign { return slices.Clone(e.drift) }

// Diffusion returns the diffusion assignments; empty for constant noise.
func (e *Equation) Diffusion() []symbolic.Assign { return slices.Clone(e.diffusion) }

// NoiseConstant returns the constant diffusion, or nil when the noise is
// functional or absent.
func (e *Equation) NoiseConstant() dynamo.Value {
	if e.noise == nil {
		return nil
	}
	return e.noise.Clone()
}

func (e *Equation) IsStochastic() bool      { return len(e.diffusion) > 0 || e.noise != nil }
func (e *Equation) IsFunctionalNoise() bool { return len(e.diffusion) > 0 }
func (e *Equation) IsMultiReturn() bool     { return len(e.spec.Returns) > 0 }

func (e *Equation) list(part Part) []symbolic.Assign {
	if part == Diffusion {
		return e.diffusion
	}
	return e.drift
}

// DependsOnState reports whether the result of part reads the state
// variable, directly or through temporaries. Constant noise never does.
func (e *Equation) DependsOnState(part Part) bool {
	return symbolic.DependsOn(e.list(part), e.spec.Var)
}

func (e *Equation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "d%s/d%s:", e.spec.Var, e.spec.Time)
	for _, st := range e.drift {
		b.WriteString(" " + st.String() + ";")
	}
	switch {
	case len(e.diffusion) > 0:
		b.WriteString(" noise:")
		for _, st := range e.diffusion {
			b.WriteString(" " + st.String() + ";")
		}
	case e.noise != nil:
		fmt.Fprintf(&b, " noise: %v", e.noise)
	}
	return b.String()
}
