package integrators_test

import (
	"errors"
	"go/parser"
	"go/token"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
)

var (
	decay = diffeq.MustNew(diffeq.Spec{Name: "decay", Var: "y", Drift: []string{"dydt = -y"}})

	forced = diffeq.MustNew(diffeq.Spec{
		Name:    "forced",
		Var:     "x",
		Args:    []string{"w"},
		Drift:   []string{"s = sin(w * t)", "dxdt = s - x*x"},
		Returns: []string{"s"},
	})

	constNoise = diffeq.MustNew(diffeq.Spec{
		Name:  "ou",
		Var:   "x",
		Args:  []string{"theta"},
		Drift: []string{"dxdt = -theta * x"},
		Noise: diffeq.Quantity{0.3},
	})

	arrayNoise = diffeq.MustNew(diffeq.Spec{
		Name:  "ou2",
		Var:   "x",
		Drift: []string{"dxdt = -x"},
		Noise: diffeq.Quantity{0.1, 0.2},
	})

	// Temporaries named like scheme intermediates and stage copies.
	lookalikeODE = diffeq.MustNew(diffeq.Spec{
		Name:    "f",
		Var:     "x",
		Drift:   []string{"res = -x", "a = res", "a_k2 = a", "x_k2 = a_k2", "dW = x_k2", "noise = dW", "dxdt = noise"},
		Returns: []string{"res"},
	})

	lookalikeSDE = diffeq.MustNew(diffeq.Spec{
		Name:      "f",
		Var:       "x",
		Args:      []string{"sigma"},
		Drift:     []string{"x_bar = -x", "x_hat = x_bar", "res = x_hat", "dxdt = res"},
		Diffusion: []string{"dW = sigma * x", "dg_corr = dW", "x_k2 = dg_corr", "g = x_k2"},
	})

	lookalikeLinear = diffeq.MustNew(diffeq.Spec{
		Name:      "f",
		Var:       "x",
		Args:      []string{"a", "sigma"},
		Drift:     []string{"lam = a", "linear_exp = lam", "df_part = linear_exp", "dxdt = df_part * x"},
		Diffusion: []string{"dg_part = sigma * x", "g = dg_part"},
		Returns:   []string{"lam"},
	})

	stateFreeNoise = diffeq.MustNew(diffeq.Spec{
		Name:      "additive",
		Var:       "x",
		Args:      []string{"sigma"},
		Drift:     []string{"dxdt = -x"},
		Diffusion: []string{"g = 2 * sigma"},
	})

	cubic = diffeq.MustNew(diffeq.Spec{
		Name:      "cubic",
		Var:       "x",
		Args:      []string{"sigma"},
		Drift:     []string{"dxdt = -x*x*x"},
		Diffusion: []string{"g = sigma * x"},
	})

	linear = diffeq.MustNew(diffeq.Spec{
		Name:      "lin",
		Var:       "x",
		Args:      []string{"a", "sigma"},
		Drift:     []string{"lam = a", "dxdt = lam * x"},
		Diffusion: []string{"g = sigma * x"},
		Returns:   []string{"lam"},
	})

	linearODE = diffeq.MustNew(diffeq.Spec{
		Name:    "lin",
		Var:     "y",
		Args:    []string{"a"},
		Drift:   []string{"lam = a", "dydt = lam * y"},
		Returns: []string{"lam"},
	})
)

func build(method string, eq *diffeq.Equation, opts integrators.Options) *integrators.Integrator {
	GinkgoHelper()
	c, err := integrators.Get(method)
	Expect(err).NotTo(HaveOccurred())
	in, err := c(eq, opts)
	Expect(err).NotTo(HaveOccurred())
	return in
}

func step(in *integrators.Integrator, seed int64, y dynamo.Value, t float64, args ...dynamo.Value) (dynamo.Value, []dynamo.Value) {
	GinkgoHelper()
	y1, aux, err := in.Step(dynamo.NewSource(seed, 0), y, t, args...)
	Expect(err).NotTo(HaveOccurred())
	return y1, aux
}

var _ = Describe("Registry", func() {
	It("looks names up case-insensitively", func() {
		lower := build("rk4", forced, integrators.Options{Dt: 0.05})
		upper := build(" RK4 ", forced, integrators.Options{Dt: 0.05})
		Expect(upper.Scheme()).To(Equal(lower.Scheme()))

		a, _ := step(lower, 0, dynamo.Array{0.5, 1}, 0.2, dynamo.Scalar(3))
		b, _ := step(upper, 0, dynamo.Array{0.5, 1}, 0.2, dynamo.Scalar(3))
		Expect(a).To(Equal(b))
	})

	It("treats milstein as milstein_ito", func() {
		Expect(build("Milstein", cubic, integrators.Options{Dt: 0.1}).Scheme().Kind).To(Equal(integrators.MilsteinIto))
		Expect(integrators.Aliases()).To(HaveKeyWithValue("milstein", "milstein_ito"))
	})

	It("rejects unknown names with the offending string", func() {
		_, err := integrators.Get("not_a_method")
		Expect(err).To(MatchError(integrators.ErrUnknownMethod))
		Expect(err.Error()).To(ContainSubstring("not_a_method"))

		var ume *integrators.UnknownMethodError
		Expect(errors.As(err, &ume)).To(BeTrue())
		Expect(ume.Name).To(Equal("not_a_method"))
	})

	It("lists every canonical method", func() {
		Expect(integrators.Methods()).To(ConsistOf(
			"euler", "heun", "midpoint", "rk2", "rk3", "rk4", "rk4_alternative",
			"exponential", "milstein_ito", "milstein_stra"))
		for _, name := range integrators.Methods() {
			k, err := integrators.ParseKind(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.String()).To(Equal(name))
		}
	})

	It("builds a fresh integrator on every call", func() {
		c := integrators.MustGet("euler")
		a, err := c(decay, integrators.Options{Dt: 0.1})
		Expect(err).NotTo(HaveOccurred())
		b, err := c(decay, integrators.Options{Dt: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(a).NotTo(BeIdenticalTo(b))
	})

	It("rejects non-positive steps", func() {
		for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
			_, err := integrators.MustGet("euler")(decay, integrators.Options{Dt: dt})
			Expect(err).To(MatchError(integrators.ErrInvalidStep))
		}
	})
})

var _ = Describe("Step arguments", func() {
	It("checks the argument count", func() {
		in := build("euler", forced, integrators.Options{Dt: 0.1})
		_, _, err := in.Step(nil, dynamo.Scalar(1), 0)
		Expect(err).To(MatchError(integrators.ErrArgCount))
	})

	It("needs a random source for stochastic equations", func() {
		in := build("euler", constNoise, integrators.Options{Dt: 0.1})
		_, _, err := in.Step(nil, dynamo.Scalar(1), 0, dynamo.Scalar(1))
		Expect(err).To(MatchError(integrators.ErrNoRandomSource))
	})

	It("rejects an empty state", func() {
		in := build("euler", decay, integrators.Options{Dt: 0.1})
		_, _, err := in.Step(nil, dynamo.Array{}, 0)
		Expect(err).To(MatchError(dynamo.ErrEmptyValue))
	})
})

var _ = Describe("Euler", func() {
	It("steps dy/dt = -y from 1 to exactly 0.9", func() {
		y1, aux := step(build("euler", decay, integrators.Options{Dt: 0.1}), 0, dynamo.Scalar(1), 0)
		Expect(y1).To(Equal(dynamo.Scalar(0.9)))
		Expect(aux).To(BeEmpty())
	})

	It("works elementwise on arrays", func() {
		y1, _ := step(build("euler", decay, integrators.Options{Dt: 0.5}), 0, dynamo.Array{2, 4}, 0)
		Expect(y1).To(Equal(dynamo.Array{1, 2}))
	})

	It("passes auxiliary returns through", func() {
		_, aux := step(build("euler", forced, integrators.Options{Dt: 0.1}), 0, dynamo.Scalar(1), 0.25, dynamo.Scalar(2))
		Expect(aux).To(HaveLen(1))
		Expect(float64(aux[0].(dynamo.Scalar))).To(BeNumerically("~", math.Sin(0.5), 1e-15))
	})

	It("draws noise shaped like the state", func() {
		in := build("euler", arrayNoise, integrators.Options{Dt: 0.1})
		y1, _ := step(in, 4, dynamo.Array{1, 1}, 0)
		Expect(y1.Len()).To(Equal(2))
		again, _ := step(in, 4, dynamo.Array{1, 1}, 0)
		Expect(again).To(Equal(y1))
	})
})

var _ = Describe("Runge-Kutta family", func() {
	rk4Error := func(dt float64, steps int) float64 {
		in := build("rk4", decay, integrators.Options{Dt: dt})
		var y dynamo.Value = dynamo.Scalar(1)
		for i := 0; i < steps; i++ {
			y, _ = step(in, 0, y, float64(i)*dt)
		}
		return math.Abs(float64(y.(dynamo.Scalar)) - math.Exp(-dt*float64(steps)))
	}

	It("has fifth order local error for RK4", func() {
		ratio := rk4Error(0.1, 1) / rk4Error(0.05, 1)
		Expect(ratio).To(BeNumerically("~", 32, 3))
	})

	It("has fourth order error over a fixed horizon for RK4", func() {
		ratio := rk4Error(0.1, 10) / rk4Error(0.05, 20)
		Expect(ratio).To(BeNumerically("~", 16, 2))
	})

	It("makes midpoint equal to RK2 with beta 1/2", func() {
		mid := build("midpoint", forced, integrators.Options{Dt: 0.1})
		rk2, err := integrators.NewRK2(0.5)(forced, integrators.Options{Dt: 0.1})
		Expect(err).NotTo(HaveOccurred())

		a, auxA := step(mid, 0, dynamo.Array{0.5, -1}, 0.3, dynamo.Scalar(2))
		b, auxB := step(rk2, 0, dynamo.Array{0.5, -1}, 0.3, dynamo.Scalar(2))
		Expect(a).To(Equal(b))
		Expect(auxA).To(Equal(auxB))
	})

	It("accepts any positive beta and rejects negative ones", func() {
		rk2, err := integrators.NewRK2(2)(forced, integrators.Options{Dt: 0.1})
		Expect(err).NotTo(HaveOccurred())
		y1, _ := step(rk2, 0, dynamo.Scalar(0.5), 0.3, dynamo.Scalar(2))
		Expect(dynamo.IsValid(y1)).To(BeTrue())

		_, err = integrators.NewRK2(-0.5)(forced, integrators.Options{Dt: 0.1})
		Expect(err).To(MatchError(integrators.ErrCapability))
	})

	It("makes heun equal to RK2 with beta 1 for ODEs", func() {
		heun := build("heun", forced, integrators.Options{Dt: 0.1})
		rk2, err := integrators.NewRK2(1)(forced, integrators.Options{Dt: 0.1})
		Expect(err).NotTo(HaveOccurred())

		a, _ := step(heun, 0, dynamo.Scalar(0.5), 0.3, dynamo.Scalar(2))
		b, _ := step(rk2, 0, dynamo.Scalar(0.5), 0.3, dynamo.Scalar(2))
		Expect(a).To(Equal(b))
	})

	DescribeTable("converges on dy/dt = -y",
		func(method string, tol float64) {
			in := build(method, decay, integrators.Options{Dt: 0.01})
			var y dynamo.Value = dynamo.Scalar(1)
			for i := 0; i < 100; i++ {
				y, _ = step(in, 0, y, float64(i)*0.01)
			}
			Expect(float64(y.(dynamo.Scalar))).To(BeNumerically("~", math.Exp(-1), tol))
		},
		Entry("euler", "euler", 2e-3),
		Entry("rk2", "rk2", 1e-5),
		Entry("midpoint", "midpoint", 1e-5),
		Entry("rk3", "rk3", 1e-7),
		Entry("rk4", "rk4", 1e-9),
		Entry("rk4_alternative", "rk4_alternative", 1e-9),
	)

	DescribeTable("rejects stochastic equations",
		func(method string) {
			_, err := integrators.MustGet(method)(constNoise, integrators.Options{Dt: 0.1})
			Expect(err).To(MatchError(integrators.ErrCapability))

			var ce *integrators.CapabilityError
			Expect(errors.As(err, &ce)).To(BeTrue())
		},
		Entry("rk2", "rk2"),
		Entry("midpoint", "midpoint"),
		Entry("rk3", "rk3"),
		Entry("rk4", "rk4"),
		Entry("rk4_alternative", "rk4_alternative"),
	)
})

var _ = Describe("Heun", func() {
	It("is bit-identical to Euler-Maruyama for constant noise", func() {
		heun := build("heun", constNoise, integrators.Options{Dt: 0.1})
		euler := build("euler", constNoise, integrators.Options{Dt: 0.1})
		y := dynamo.Value(dynamo.Array{1, -2, 3})
		for seed := int64(0); seed < 5; seed++ {
			a, _ := step(heun, seed, y, 0, dynamo.Scalar(0.7))
			b, _ := step(euler, seed, y, 0, dynamo.Scalar(0.7))
			Expect(a).To(Equal(b))
		}
	})

	It("averages drift and diffusion for functional noise", func() {
		heun := build("heun", cubic, integrators.Options{Dt: 0.01})
		euler := build("euler", cubic, integrators.Options{Dt: 0.01})
		a, _ := step(heun, 1, dynamo.Scalar(1), 0, dynamo.Scalar(0.5))
		b, _ := step(euler, 1, dynamo.Scalar(1), 0, dynamo.Scalar(0.5))
		Expect(a).NotTo(Equal(b))
		Expect(dynamo.IsValid(a)).To(BeTrue())
	})
})

var _ = Describe("ExponentialEuler", func() {
	fused := integrators.Options{Fused: true}

	It("is exact on dy/dt = a y", func() {
		for _, dt := range []float64{0.5, 0.1, 0.01, 1e-4} {
			opts := fused
			opts.Dt = dt
			in := build("exponential", linearODE, opts)
			y1, aux := step(in, 0, dynamo.Scalar(2), 0, dynamo.Scalar(-1.5))
			Expect(float64(y1.(dynamo.Scalar))).To(BeNumerically("~", 2*math.Exp(-1.5*dt), 1e-13))
			Expect(aux).To(BeEmpty(), "the linear coefficient is consumed")
		}
	})

	It("requires fused mode", func() {
		_, err := integrators.MustGet("exponential")(linearODE, integrators.Options{Dt: 0.1})
		Expect(err).To(MatchError(integrators.ErrCapability))
		Expect(err.Error()).To(ContainSubstring("fused"))
	})

	It("requires the linear coefficient as a return", func() {
		_, err := integrators.MustGet("exponential")(decay, integrators.Options{Dt: 0.1, Fused: true})
		Expect(err).To(MatchError(integrators.ErrCapability))
	})

	It("yields a non-finite state for a zero coefficient", func() {
		in := build("exponential", linearODE, integrators.Options{Dt: 0.1, Fused: true})
		y1, _ := step(in, 0, dynamo.Scalar(2), 0, dynamo.Scalar(0))
		Expect(dynamo.IsValid(y1)).To(BeFalse())
	})

	It("scales the noise increment by exp(lambda dt)", func() {
		in := build("exponential", linear, integrators.Options{Dt: 0.1, Fused: true})
		y1, _ := step(in, 2, dynamo.Scalar(1), 0, dynamo.Scalar(-1), dynamo.Scalar(0.2))
		xi := float64(dynamo.Scalar(0).NormalLike(dynamo.NewSource(2, 0)).(dynamo.Scalar))
		// f = -x and g = 0.2 x at x = 1, so the drift part lands on growth.
		growth := math.Exp(-0.1)
		want := growth + growth*0.2*math.Sqrt(0.1)*xi
		Expect(float64(y1.(dynamo.Scalar))).To(BeNumerically("~", want, 1e-12))
	})
})

var _ = Describe("Milstein", func() {
	DescribeTable("degenerates to Euler-Maruyama when the noise ignores the state",
		func(method string, eq *diffeq.Equation, args ...dynamo.Value) {
			m := build(method, eq, integrators.Options{Dt: 0.1})
			e := build("euler", eq, integrators.Options{Dt: 0.1})
			for seed := int64(0); seed < 5; seed++ {
				a, _ := step(m, seed, dynamo.Array{1, 2}, 0, args...)
				b, _ := step(e, seed, dynamo.Array{1, 2}, 0, args...)
				Expect(a).To(Equal(b))
			}
		},
		Entry("ito, functional", "milstein_ito", stateFreeNoise, dynamo.Scalar(0.3)),
		Entry("stratonovich, functional", "milstein_stra", stateFreeNoise, dynamo.Scalar(0.3)),
		Entry("ito, constant", "milstein", constNoise, dynamo.Scalar(0.3)),
		Entry("stratonovich, constant", "milstein_stra", constNoise, dynamo.Scalar(0.3)),
		Entry("ito, deterministic", "milstein", decay),
	)

	It("differs between Ito and Stratonovich by the dt shift", func() {
		dt := 0.04
		ito := build("milstein_ito", cubic, integrators.Options{Dt: dt})
		stra := build("milstein_stra", cubic, integrators.Options{Dt: dt})
		a, _ := step(ito, 3, dynamo.Scalar(1), 0, dynamo.Scalar(0.5))
		b, _ := step(stra, 3, dynamo.Scalar(1), 0, dynamo.Scalar(0.5))

		// g = 0.5 x and yhat - y = -dt + 0.5 sqrt(dt), so the corrections
		// differ by 0.5 (g(yhat) - g(y)) sqrt(dt).
		dg := 0.5 * (0.5*math.Sqrt(dt) - dt)
		gap := 0.5 * dg * math.Sqrt(dt)
		Expect(float64(b.(dynamo.Scalar)) - float64(a.(dynamo.Scalar))).To(BeNumerically("~", gap, 1e-12))
	})
})

var _ = Describe("Generated code", func() {
	aot := func(dt float64) integrators.Options {
		return integrators.Options{Dt: dt, AheadOfTime: true, Fused: true}
	}

	It("is only built ahead of time", func() {
		in := build("euler", decay, integrators.Options{Dt: 0.1})
		Expect(in.Code()).To(BeEmpty())
		Expect(in.Unit()).To(BeNil())
		_, _, err := in.StepCode(nil, dynamo.Scalar(1), 0)
		Expect(err).To(MatchError(integrators.ErrNoCode))
	})

	It("renders Euler as single assignments", func() {
		in := build("euler", decay, aot(0.1))
		Expect(in.Code()).To(Equal(
			"_decay_dydt := -y\n" +
				"y = y + 0.1 * _decay_dydt\n" +
				"_decay__res := [...]float64{y}\n"))
	})

	It("binds array constants as parameters", func() {
		in := build("euler", arrayNoise, aot(0.1))
		Expect(in.Unit().Inputs()).To(Equal([]string{"x", "t", "_ou2__noise"}))

		a, _, err := in.Step(dynamo.NewSource(5, 0), dynamo.Array{1, 2}, 0)
		Expect(err).NotTo(HaveOccurred())
		b, _, err := in.StepCode(dynamo.NewSource(5, 0), dynamo.Array{1, 2}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(dynamo.EqualApprox(a, b, 1e-12)).To(BeTrue())
	})

	DescribeTable("agrees with the closure",
		func(method string, eq *diffeq.Equation, y dynamo.Value, args ...dynamo.Value) {
			in := build(method, eq, aot(0.05))
			a, auxA, err := in.Step(dynamo.NewSource(11, 0), y, 0.3, args...)
			Expect(err).NotTo(HaveOccurred())
			b, auxB, err := in.StepCode(dynamo.NewSource(11, 0), y, 0.3, args...)
			Expect(err).NotTo(HaveOccurred())

			Expect(dynamo.EqualApprox(a, b, 1e-12)).To(BeTrue(), "closure %v, code %v", a, b)
			Expect(auxB).To(HaveLen(len(auxA)))
			for i := range auxA {
				Expect(dynamo.EqualApprox(auxA[i], auxB[i], 1e-12)).To(BeTrue())
			}
		},
		Entry("euler", "euler", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("heun", "heun", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("midpoint", "midpoint", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("rk2", "rk2", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("rk3", "rk3", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("rk4", "rk4", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("rk4_alternative", "rk4_alternative", forced, dynamo.Array{0.5, 1}, dynamo.Scalar(2)),
		Entry("exponential", "exponential", linearODE, dynamo.Scalar(2), dynamo.Scalar(-1.5)),
		Entry("euler-maruyama", "euler", cubic, dynamo.Array{1, -0.5}, dynamo.Scalar(0.4)),
		Entry("heun sde", "heun", cubic, dynamo.Array{1, -0.5}, dynamo.Scalar(0.4)),
		Entry("heun constant noise", "heun", constNoise, dynamo.Scalar(1), dynamo.Scalar(0.4)),
		Entry("exponential sde", "exponential", linear, dynamo.Scalar(1), dynamo.Scalar(-1), dynamo.Scalar(0.3)),
		Entry("milstein_ito", "milstein_ito", cubic, dynamo.Array{1, -0.5}, dynamo.Scalar(0.4)),
		Entry("milstein_stra", "milstein_stra", cubic, dynamo.Array{1, -0.5}, dynamo.Scalar(0.4)),
	)

	DescribeTable("keeps temporaries apart from scheme intermediates",
		func(method string, eq *diffeq.Equation, y dynamo.Value, args ...dynamo.Value) {
			c, err := integrators.Get(method)
			Expect(err).NotTo(HaveOccurred())
			in, err := c(eq, aot(0.05))
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Code()).NotTo(BeEmpty())

			a, _, err := in.Step(dynamo.NewSource(2, 0), y, 0.1, args...)
			Expect(err).NotTo(HaveOccurred())
			b, _, err := in.StepCode(dynamo.NewSource(2, 0), y, 0.1, args...)
			Expect(err).NotTo(HaveOccurred())
			Expect(dynamo.EqualApprox(a, b, 1e-12)).To(BeTrue(), "closure %v, code %v", a, b)
		},
		Entry("euler", "euler", lookalikeODE, dynamo.Scalar(1)),
		Entry("heun", "heun", lookalikeODE, dynamo.Scalar(1)),
		Entry("midpoint", "midpoint", lookalikeODE, dynamo.Scalar(1)),
		Entry("rk2", "rk2", lookalikeODE, dynamo.Scalar(1)),
		Entry("rk3", "rk3", lookalikeODE, dynamo.Scalar(1)),
		Entry("rk4", "rk4", lookalikeODE, dynamo.Scalar(1)),
		Entry("rk4_alternative", "rk4_alternative", lookalikeODE, dynamo.Scalar(1)),
		Entry("euler-maruyama", "euler", lookalikeSDE, dynamo.Scalar(1), dynamo.Scalar(0.3)),
		Entry("heun sde", "heun", lookalikeSDE, dynamo.Scalar(1), dynamo.Scalar(0.3)),
		Entry("milstein_ito", "milstein_ito", lookalikeSDE, dynamo.Scalar(1), dynamo.Scalar(0.3)),
		Entry("milstein_stra", "milstein_stra", lookalikeSDE, dynamo.Scalar(1), dynamo.Scalar(0.3)),
		Entry("exponential", "exponential", lookalikeLinear, dynamo.Scalar(1), dynamo.Scalar(-1), dynamo.Scalar(0.3)),
	)

	It("checks the argument count when binding unit inputs", func() {
		in := build("euler", forced, aot(0.1))
		_, err := in.UnitInputs(dynamo.Scalar(1), 0)
		Expect(err).To(MatchError(integrators.ErrArgCount))
		_, _, err = in.StepCode(nil, dynamo.Scalar(1), 0)
		Expect(err).To(MatchError(integrators.ErrArgCount))
	})

	DescribeTable("renders a function that parses as Go",
		func(method string, eq *diffeq.Equation) {
			in := build(method, eq, aot(0.01))
			src := "package gen\n\nimport \"math\"\n\n" + codegen.RenderFunc(in.Unit(), "step")
			_, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, 0)
			Expect(err).NotTo(HaveOccurred(), src)
		},
		Entry("rk4", "rk4", forced),
		Entry("rk3", "rk3", forced),
		Entry("heun", "heun", cubic),
		Entry("exponential", "exponential", linear),
		Entry("milstein_ito", "milstein_ito", cubic),
		Entry("milstein_stra", "milstein_stra", cubic),
	)

	It("merges the units of several equations", func() {
		a := build("rk4", decay.RenameForMerge("n0"), aot(0.1))
		b := build("euler", forced.RenameForMerge("n1"), aot(0.1))
		merged, err := codegen.Merge(a.Unit(), b.Unit())
		Expect(err).NotTo(HaveOccurred())
		Expect(merged.Vars()).To(Equal([]string{"y", "x"}))

		env, err := a.UnitInputs(dynamo.Scalar(1), 0)
		Expect(err).NotTo(HaveOccurred())
		inputs, err := b.UnitInputs(dynamo.Scalar(0.5), 0, dynamo.Scalar(2))
		Expect(err).NotTo(HaveOccurred())
		for k, v := range inputs {
			env[k] = v
		}
		res, err := merged.Eval(nil, env)
		Expect(err).NotTo(HaveOccurred())

		ya, _ := step(a, 0, dynamo.Scalar(1), 0)
		yb, _ := step(b, 0, dynamo.Scalar(0.5), 0, dynamo.Scalar(2))
		Expect(dynamo.EqualApprox(res[0][0], ya, 1e-12)).To(BeTrue())
		Expect(dynamo.EqualApprox(res[1][0], yb, 1e-12)).To(BeTrue())
	})
})
