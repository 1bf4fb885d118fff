package integrators

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// tableau is the Butcher tableau of an explicit Runge-Kutta method.
type tableau struct {
	a [][]float64
	b []float64
	c []float64
}

// rk2Tableau is the parametric two-stage method: beta = 1/2 is the
// midpoint rule, 2/3 Ralston's method and 1 Heun's trapezoidal rule.
func rk2Tableau(beta float64) tableau {
	return tableau{
		a: [][]float64{nil, {beta}},
		b: []float64{1 - 1/(2*beta), 1 / (2 * beta)},
		c: []float64{0, beta},
	}
}

var rk3Tableau = tableau{
	a: [][]float64{nil, {0.5}, {-1, 2}},
	b: []float64{1.0 / 6, 4.0 / 6, 1.0 / 6},
	c: []float64{0, 0.5, 1},
}

var rk4Tableau = tableau{
	a: [][]float64{nil, {0.5}, {0, 0.5}, {0, 0, 1}},
	b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	c: []float64{0, 0.5, 0.5, 1},
}

// rk4AltTableau is the 3/8 rule.
var rk4AltTableau = tableau{
	a: [][]float64{nil, {1.0 / 3}, {-1.0 / 3, 1}, {1, -1, 1}},
	b: []float64{1.0 / 8, 3.0 / 8, 3.0 / 8, 1.0 / 8},
	c: []float64{0, 1.0 / 3, 2.0 / 3, 1},
}

// closure evaluates the stages in order. The auxiliary returns are those of
// the first stage, evaluated at (y0, t).
func (tb tableau) closure(ev *evaluators, dt float64) stepFunc {
	return func(_ rand.Source, y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
		k := make([]dynamo.Value, len(tb.b))
		var aux []dynamo.Value
		for i := range tb.b {
			yi := y
			for j, a := range tb.a[i] {
				if a != 0 {
					yi = dynamo.AddScaled(yi, dt*a, k[j])
				}
			}
			ki, auxi, err := ev.f.Call(yi, t+tb.c[i]*dt, args)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				aux = auxi
			}
			k[i] = ki
		}

		y1 := y
		for i, w := range tb.b {
			if w != 0 {
				y1 = dynamo.AddScaled(y1, dt*w, k[i])
			}
		}
		return y1, aux, nil
	}
}

// code emits the same stages. Stage i > 0 evaluates the drift at a bound
// intermediate state "_<func>__<var>_k<i>".
func (tb tableau) code(b *codegen.Builder, eq *diffeq.Equation, dt float64) {
	y := sym(eq.VarName())
	k := make([]string, len(tb.b))
	for i := range tb.b {
		if i == 0 {
			k[i] = b.Stage(diffeq.Drift, "", nil, nil)
			continue
		}
		yi := y
		for j, a := range tb.a[i] {
			if a != 0 {
				yi = symbolic.Add(yi, scaled(dt*a, sym(k[j])))
			}
		}
		stage := fmt.Sprintf("k%d", i+1)
		ys := b.Let(eq.VarName()+"_"+stage, yi)
		k[i] = b.Stage(diffeq.Drift, stage, sym(ys), timeAt(eq, tb.c[i]*dt))
	}

	update := y
	for i, w := range tb.b {
		if w != 0 {
			update = symbolic.Add(update, scaled(dt*w, sym(k[i])))
		}
	}
	b.Update(update)
	b.Result(eq.ReturnNames("")...)
}
