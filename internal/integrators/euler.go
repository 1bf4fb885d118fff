package integrators

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// eulerStep is explicit Euler for ODEs and Euler-Maruyama for SDEs:
//
//	y1 = y0 + f dt + g sqrt(dt) xi
func eulerStep(ev *evaluators, dt float64) stepFunc {
	sqrtDt := math.Sqrt(dt)
	return func(src rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
		f, aux, err := ev.f.Call(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		y1 := dynamo.AddScaled(y, dt, f)
		if ev.g == nil {
			return y1, aux, nil
		}
		g, err := ev.diffusion(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		xi := y.NormalLike(src)
		return dynamo.AddScaled(y1, sqrtDt, dynamo.Mul(g, xi)), aux, nil
	}
}

func eulerCode(b *codegen.Builder, eq *diffeq.Equation, dt float64) {
	y := sym(eq.VarName())
	f := b.Stage(diffeq.Drift, "", nil, nil)
	update := symbolic.Add(y, scaled(dt, sym(f)))
	if eq.IsStochastic() {
		g := diffusionAt(b, eq, "", nil)
		dW := b.Noise("dW", symbolic.N(math.Sqrt(dt)))
		update = symbolic.Add(update, symbolic.Mul(g, sym(dW)))
	}
	b.Update(update)
	b.Result(eq.ReturnNames("")...)
}
