package integrators

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// exponentialStep is exponential Euler. The first auxiliary return of the
// drift is the linear coefficient lambda of f = lambda*y + r:
//
//	y1 = y0 + (exp(lambda dt) - 1)/lambda f + exp(lambda dt) g sqrt(dt) xi
//
// lambda is consumed; the remaining returns pass through. lambda must be
// nonzero: a zero coefficient yields a non-finite state.
func exponentialStep(ev *evaluators, dt float64) stepFunc {
	sqrtDt := math.Sqrt(dt)
	return func(src rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
		f, aux, err := ev.f.Call(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		lambda := aux[0]
		growth := dynamo.Exp(dynamo.Scale(lambda, dt))
		phi := dynamo.Div(dynamo.Sub(growth, dynamo.Scalar(1)), lambda)
		y1 := dynamo.Add(y, dynamo.Mul(phi, f))

		if ev.g != nil {
			g, err := ev.diffusion(y, t, args)
			if err != nil {
				return nil, nil, err
			}
			dg := dynamo.Scale(dynamo.Mul(g, y.NormalLike(src)), sqrtDt)
			y1 = dynamo.Add(y1, dynamo.Mul(growth, dg))
		}
		return y1, aux[1:], nil
	}
}

func exponentialCode(b *codegen.Builder, eq *diffeq.Equation, dt float64) {
	y := sym(eq.VarName())
	f := sym(b.Stage(diffeq.Drift, "", nil, nil))
	returns := eq.ReturnNames("")
	lambda := sym(returns[0])

	growth := sym(b.Let("linear_exp", symbolic.Fn("exp", scaled(dt, lambda))))
	dfPart := b.Let("df_part", symbolic.Mul(symbolic.Div(symbolic.Sub(growth, symbolic.N(1)), lambda), f))
	update := symbolic.Add(y, sym(dfPart))

	if eq.IsStochastic() {
		g := diffusionAt(b, eq, "", nil)
		dW := sym(b.Noise("dW", symbolic.N(math.Sqrt(dt))))
		dgPart := b.Let("dg_part", symbolic.Mul(g, dW))
		update = symbolic.Add(update, symbolic.Mul(growth, sym(dgPart)))
	}
	b.Update(update)
	b.Result(returns[1:]...)
}
