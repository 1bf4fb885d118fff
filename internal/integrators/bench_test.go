package integrators

import (
	"testing"

	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
)

var benchLIF = diffeq.MustNew(diffeq.Spec{
	Name:    "lif",
	Var:     "V",
	Args:    []string{"I", "tau"},
	Drift:   []string{"lam = -1 / tau", "dVdt = lam*V + I/tau"},
	Returns: []string{"lam"},
})

var benchCubic = diffeq.MustNew(diffeq.Spec{
	Name:      "cubic",
	Var:       "x",
	Args:      []string{"sigma"},
	Drift:     []string{"dxdt = -x*x*x"},
	Diffusion: []string{"g = sigma * x"},
})

func benchState(n int) dynamo.Array {
	x := make(dynamo.Array, n)
	for i := range x {
		x[i] = float64(i) * 0.1
	}
	return x
}

func benchStep(b *testing.B, method string, eq *diffeq.Equation, opts Options, code bool, args ...dynamo.Value) {
	in, err := MustGet(method)(eq, opts)
	if err != nil {
		b.Fatal(err)
	}
	step := in.Step
	if code {
		step = in.StepCode
	}
	src := dynamo.NewSource(1, 0)
	var y dynamo.Value = benchState(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y, _, err = step(src, y, float64(i)*opts.Dt, args...)
		if err != nil {
			b.Fatal(err)
		}
	}
}

var lifArgs = []dynamo.Value{dynamo.Scalar(1.5), dynamo.Scalar(10)}

func BenchmarkEuler(b *testing.B) {
	benchStep(b, "euler", benchLIF, Options{Dt: 0.01}, false, lifArgs...)
}

func BenchmarkRK4(b *testing.B) {
	benchStep(b, "rk4", benchLIF, Options{Dt: 0.01}, false, lifArgs...)
}

func BenchmarkRK4Code(b *testing.B) {
	benchStep(b, "rk4", benchLIF, Options{Dt: 0.01, AheadOfTime: true}, true, lifArgs...)
}

func BenchmarkExponential(b *testing.B) {
	benchStep(b, "exponential", benchLIF, Options{Dt: 0.01, Fused: true}, false, lifArgs...)
}

func BenchmarkHeunSDE(b *testing.B) {
	benchStep(b, "heun", benchCubic, Options{Dt: 0.001}, false, dynamo.Scalar(0.2))
}

func BenchmarkMilsteinIto(b *testing.B) {
	benchStep(b, "milstein_ito", benchCubic, Options{Dt: 0.001}, false, dynamo.Scalar(0.2))
}

func BenchmarkBuild(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := MustGet("rk4")(benchLIF, Options{Dt: 0.01, AheadOfTime: true}); err != nil {
			b.Fatal(err)
		}
	}
}
