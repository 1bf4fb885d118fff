package codegen_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

func decay(name, v string) *diffeq.Equation {
	return diffeq.MustNew(diffeq.Spec{Name: name, Var: v, Drift: []string{"d = -" + v}})
}

func eulerUnit(t *testing.T, eq *diffeq.Equation, dt float64) *codegen.Unit {
	t.Helper()
	b := codegen.NewBuilder(eq)
	f := b.Stage(diffeq.Drift, "", nil, nil)
	b.Update(symbolic.Add(symbolic.S(eq.VarName()), symbolic.Mul(symbolic.N(dt), symbolic.S(f))))
	b.Result()
	u, err := b.Unit()
	require.NoError(t, err)
	return u
}

func TestRender(t *testing.T) {
	u := eulerUnit(t, decay("decay", "y"), 0.1)
	want := "_decay_d := -y\n" +
		"y = y + 0.1 * _decay_d\n" +
		"_decay__res := [...]float64{y}\n"
	assert.Equal(t, want, codegen.Render(u))
	assert.Equal(t, []string{"y", "t"}, u.Inputs())
	assert.Equal(t, []string{"y"}, u.Vars())

	name, ok := u.Lookup(codegen.Key{Equation: "decay", Local: "d"})
	require.True(t, ok)
	assert.Equal(t, "_decay_d", name)
}

func TestEval(t *testing.T) {
	u := eulerUnit(t, decay("decay", "y"), 0.1)
	res, err := u.Eval(nil, map[string]dynamo.Value{"y": dynamo.Scalar(1), "t": dynamo.Scalar(0)})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []dynamo.Value{dynamo.Scalar(0.9)}, res[0])

	_, err = u.Eval(nil, map[string]dynamo.Value{"y": dynamo.Scalar(1)})
	require.ErrorIs(t, err, codegen.ErrUndefined)
}

func TestRenderFuncParses(t *testing.T) {
	eq := diffeq.MustNew(diffeq.Spec{
		Name:    "lif",
		Var:     "V",
		Args:    []string{"I", "tau"},
		Drift:   []string{"lam = -1 / tau", "spare = I * 2", "dVdt = lam*V + I/tau"},
		Returns: []string{"lam"},
		Noise:   diffeq.Quantity{0.2},
	})
	b := codegen.NewBuilder(eq)
	f := b.Stage(diffeq.Drift, "", nil, nil)
	dW := b.Noise("dW", symbolic.N(0.1))
	b.Update(symbolic.Sum(symbolic.S("V"), symbolic.Mul(symbolic.N(0.01), symbolic.S(f)), symbolic.Mul(symbolic.N(0.2), symbolic.S(dW))))
	b.Result(eq.ReturnNames("")...)
	u, err := b.Unit()
	require.NoError(t, err)

	src := codegen.RenderFunc(u, "stepLIF")
	assert.Contains(t, src, "func stepLIF(V float64, t float64, _lif_I float64, _lif_tau float64) [2]float64 {")
	assert.Contains(t, src, "_lif__dW := 0.1 * normalSample(V)")
	assert.Contains(t, src, "_ = _lif_spare")
	assert.Contains(t, src, "return _lif__res")

	file := "package gen\n\nimport \"math\"\n\nvar _ = math.Exp\n\nfunc normalSample(float64) float64 { return 0 }\n\n" + src
	_, err = parser.ParseFile(token.NewFileSet(), "gen.go", file, parser.AllErrors)
	require.NoError(t, err, file)
}

func TestCollision(t *testing.T) {
	b := codegen.NewBuilder(decay("decay", "y"))
	b.Stage(diffeq.Drift, "", nil, nil)
	b.Let("d", symbolic.N(1))
	b.Let("d", symbolic.N(2))
	_, err := b.Unit()
	require.ErrorIs(t, err, codegen.ErrCollision)
}

func TestSchemeNamesApartFromTemporaries(t *testing.T) {
	eq := decay("decay", "y")
	b := codegen.NewBuilder(eq)
	d := b.Stage(diffeq.Drift, "", nil, nil)
	d2 := b.Stage(diffeq.Drift, "k2", symbolic.S("y"), nil)
	res := b.Let("res", symbolic.S(d))
	b.Update(symbolic.Add(symbolic.S(res), symbolic.S(d2)))
	b.Result()
	u, err := b.Unit()
	require.NoError(t, err)

	assert.Equal(t, "_decay_d", d)
	assert.Equal(t, "_decay_d__k2", d2)
	assert.Equal(t, "_decay__res", res)

	name, ok := u.Lookup(codegen.SchemeKey(eq, "res"))
	require.True(t, ok)
	assert.Equal(t, "_decay__res", name)
}

func TestUndefinedRead(t *testing.T) {
	b := codegen.NewBuilder(decay("decay", "y"))
	b.Update(symbolic.S("nowhere"))
	_, err := b.Unit()
	require.ErrorIs(t, err, codegen.ErrUndefined)
}

func TestMerge(t *testing.T) {
	ux := eulerUnit(t, decay("a", "x"), 0.1)
	uy := eulerUnit(t, decay("b", "y"), 0.5)

	m, err := codegen.Merge(ux, uy)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "t", "y"}, m.Inputs())
	assert.Equal(t, []string{"x", "y"}, m.Vars())
	assert.Len(t, m.Results(), 2)

	res, err := m.Eval(nil, map[string]dynamo.Value{
		"x": dynamo.Scalar(1),
		"y": dynamo.Array{2, 4},
		"t": dynamo.Scalar(0),
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, dynamo.Scalar(0.9), res[0][0])
	assert.Equal(t, dynamo.Array{1, 2}, res[1][0])

	src := codegen.RenderFunc(m, "stepAll")
	assert.Contains(t, src, "return [2]float64{_a__res[0], _b__res[0]}")

	_, err = codegen.Merge(ux, ux)
	require.ErrorIs(t, err, codegen.ErrCollision)
}

func TestRenameForMergeMatchesEquation(t *testing.T) {
	eq := diffeq.MustNew(diffeq.Spec{
		Name:  "lif",
		Var:   "V",
		Args:  []string{"tau"},
		Drift: []string{"k = -1 / tau", "dVdt = k * V"},
	})
	renamed := eulerUnit(t, eq, 0.1).RenameForMerge("n0")
	direct := eulerUnit(t, eq.RenameForMerge("n0"), 0.1)

	assert.Equal(t, codegen.Render(direct), codegen.Render(renamed))
	assert.Equal(t, direct.Inputs(), renamed.Inputs())

	name, ok := renamed.Lookup(codegen.Key{Equation: "n0_lif", Local: "k"})
	require.True(t, ok)
	assert.Equal(t, "_n0_lif_k", name)

	// Two copies of one equation only merge once namespaced apart, and
	// then only if they integrate different variables.
	_, err := codegen.Merge(eulerUnit(t, eq, 0.1), renamed)
	require.ErrorIs(t, err, codegen.ErrCollision)
}

func TestNoiseDrawReproducible(t *testing.T) {
	eq := diffeq.MustNew(diffeq.Spec{Var: "x", Drift: []string{"d = 0"}, Noise: diffeq.Quantity{1}})
	b := codegen.NewBuilder(eq)
	dW := b.Noise("dW", symbolic.N(2))
	b.Update(symbolic.Add(symbolic.S("x"), symbolic.S(dW)))
	b.Result()
	u, err := b.Unit()
	require.NoError(t, err)

	in := map[string]dynamo.Value{"x": dynamo.Array{0, 0, 0}, "t": dynamo.Scalar(0)}
	a, err := u.Eval(dynamo.NewSource(3, 0), in)
	require.NoError(t, err)
	c, err := u.Eval(dynamo.NewSource(3, 0), in)
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.Equal(t, 3, a[0][0].Len())

	_, err = u.Eval(nil, in)
	require.Error(t, err)
}
