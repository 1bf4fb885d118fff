package integrators

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// heunStep is RK2 with beta = 1 for ODEs and Euler-Maruyama for constant
// noise. For functional noise it predicts
//
//	ybar = y0 + f(y0) dt + g(y0) dW
//
// and corrects with the averaged drift and diffusion
//
//	y1 = y0 + (f(y0) + f(ybar))/2 dt + (g(y0) + g(ybar))/2 dW
//
// both evaluated at the unshifted time.
func heunStep(ev *evaluators, dt float64) stepFunc {
	if ev.g == nil {
		return rk2Tableau(1).closure(ev, dt)
	}
	if ev.g.IsConstant() {
		return eulerStep(ev, dt)
	}
	sqrtDt := math.Sqrt(dt)
	return func(src rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
		f0, aux, err := ev.f.Call(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		g0, err := ev.diffusion(y, t, args)
		if err != nil {
			return nil, nil, err
		}
		dW := dynamo.Scale(y.NormalLike(src), sqrtDt)

		ybar := dynamo.Add(dynamo.AddScaled(y, dt, f0), dynamo.Mul(g0, dW))
		f1, _, err := ev.f.Call(ybar, t, args)
		if err != nil {
			return nil, nil, err
		}
		g1, err := ev.diffusion(ybar, t, args)
		if err != nil {
			return nil, nil, err
		}

		y1 := dynamo.AddScaled(y, 0.5*dt, dynamo.Add(f0, f1))
		y1 = dynamo.AddScaled(y1, 0.5, dynamo.Mul(dynamo.Add(g0, g1), dW))
		return y1, aux, nil
	}
}

func heunCode(b *codegen.Builder, eq *diffeq.Equation, dt float64) {
	switch {
	case !eq.IsStochastic():
		rk2Tableau(1).code(b, eq, dt)
		return
	case !eq.IsFunctionalNoise():
		eulerCode(b, eq, dt)
		return
	}

	y := sym(eq.VarName())
	f0 := sym(b.Stage(diffeq.Drift, "", nil, nil))
	g0 := diffusionAt(b, eq, "", nil)
	dW := sym(b.Noise("dW", symbolic.N(math.Sqrt(dt))))

	ybar := b.Let(eq.VarName()+"_bar", symbolic.Sum(y, scaled(dt, f0), symbolic.Mul(g0, dW)))
	f1 := sym(b.Stage(diffeq.Drift, "k2", sym(ybar), nil))
	g1 := diffusionAt(b, eq, "k2", sym(ybar))

	b.Update(symbolic.Sum(y,
		scaled(0.5*dt, symbolic.Add(f0, f1)),
		scaled(0.5, symbolic.Mul(symbolic.Add(g0, g1), dW))))
	b.Result(eq.ReturnNames("")...)
}
