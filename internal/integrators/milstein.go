package integrators

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// milsteinStep is the derivative-free Milstein scheme. With the support
// state
//
//	yhat = y0 + f dt + g sqrt(dt)
//
// the Ito variant adds (g(yhat) - g(y0)) (dW^2 - dt) / (2 sqrt(dt)) to the
// Euler-Maruyama update; the Stratonovich variant drops the -dt. When the
// diffusion does not read the state the correction vanishes and the step is
// Euler-Maruyama.
func milsteinStep(ev *evaluators, dt float64, stratonovich bool) stepFunc {
	if ev.g == nil || !ev.stateNoise {
		return eulerStep(ev, dt)
	}
	sqrtDt := math.Sqrt(dt)
	shift := dt
	if stratonovich {
		shift = 0
	}
	return func(src rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
		f, aux, err := ev.f.Call(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		g, err := ev.diffusion(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		dW := dynamo.Scale(y.NormalLike(src), sqrtDt)

		drifted := dynamo.AddScaled(y, dt, f)
		yhat := dynamo.AddScaled(drifted, sqrtDt, g)
		ghat, err := ev.diffusion(yhat, t, args)
		if err != nil {
			return nil, nil, err
		}

		dW2 := dynamo.Map(dW, func(w float64) float64 { return (w*w - shift) / sqrtDt })
		correction := dynamo.Scale(dynamo.Mul(dynamo.Sub(ghat, g), dW2), 0.5)
		y1 := dynamo.Add(dynamo.Add(drifted, dynamo.Mul(g, dW)), correction)
		return y1, aux, nil
	}
}

func milsteinCode(b *codegen.Builder, eq *diffeq.Equation, dt float64, stratonovich bool) {
	if !eq.IsFunctionalNoise() || !eq.DependsOnState(diffeq.Diffusion) {
		eulerCode(b, eq, dt)
		return
	}
	sqrtDt := math.Sqrt(dt)
	y := sym(eq.VarName())

	f := sym(b.Stage(diffeq.Drift, "", nil, nil))
	g := diffusionAt(b, eq, "", nil)
	dW := sym(b.Noise("dW", symbolic.N(sqrtDt)))

	yhat := b.Let(eq.VarName()+"_hat", symbolic.Sum(y, scaled(dt, f), scaled(sqrtDt, g)))
	ghat := diffusionAt(b, eq, "k2", sym(yhat))

	dW2 := symbolic.Mul(dW, dW)
	if !stratonovich {
		dW2 = symbolic.Sub(dW2, symbolic.N(dt))
	}
	correction := b.Let("dg_corr",
		symbolic.Mul(symbolic.N(0.5), symbolic.Mul(symbolic.Sub(ghat, g), symbolic.Div(dW2, symbolic.N(sqrtDt)))))

	b.Update(symbolic.Sum(y, scaled(dt, f), symbolic.Mul(g, dW), sym(correction)))
	b.Result(eq.ReturnNames("")...)
}
