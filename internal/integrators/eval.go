package integrators

import (
	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

type evaluators struct {
	f, g *diffeq.Func
	// stateNoise is set when g reads the state variable.
	stateNoise bool
}

func newEvaluators(eq *diffeq.Equation) (*evaluators, error) {
	f, err := eq.Compile(diffeq.Drift)
	if err != nil {
		return nil, err
	}
	ev := &evaluators{f: f}
	if eq.IsStochastic() {
		if ev.g, err = eq.Compile(diffeq.Diffusion); err != nil {
			return nil, err
		}
		ev.stateNoise = eq.DependsOnState(diffeq.Diffusion)
	}
	return ev, nil
}

func (ev *evaluators) diffusion(y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, error) {
	g, _, err := ev.g.Call(y, t, args)
	return g, err
}

const noiseParam = "noise"

// diffusionAt emits the diffusion at state y for the code path. Scalar
// constants become literals; array constants become a trailing parameter.
func diffusionAt(b *codegen.Builder, eq *diffeq.Equation, stage string, y symbolic.Expr) symbolic.Expr {
	if c := eq.NoiseConstant(); c != nil {
		if s, ok := c.(dynamo.Scalar); ok {
			return symbolic.N(float64(s))
		}
		return symbolic.S(b.Param(noiseParam))
	}
	return symbolic.S(b.Stage(diffeq.Diffusion, stage, y, nil))
}

func sym(name string) symbolic.Expr { return symbolic.S(name) }

// scaled is c*x with unit factors dropped.
func scaled(c float64, x symbolic.Expr) symbolic.Expr {
	if c == 1 {
		return x
	}
	return symbolic.Mul(symbolic.N(c), x)
}

// timeAt is t + c*dt, or nil for the unshifted time.
func timeAt(eq *diffeq.Equation, shift float64) symbolic.Expr {
	if shift == 0 {
		return nil
	}
	return symbolic.Add(sym(eq.TimeName()), symbolic.N(shift))
}
