package symbolic

import (
	"fmt"
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
)

type function struct {
	goName string
	unary  func(float64) float64
	binary func(x, y float64) float64
}

func (f function) arity() int {
	if f.binary != nil {
		return 2
	}
	return 1
}

var functions = map[string]function{
	"exp":  {goName: "math.Exp", unary: math.Exp},
	"log":  {goName: "math.Log", unary: math.Log},
	"sqrt": {goName: "math.Sqrt", unary: math.Sqrt},
	"sin":  {goName: "math.Sin", unary: math.Sin},
	"cos":  {goName: "math.Cos", unary: math.Cos},
	"tan":  {goName: "math.Tan", unary: math.Tan},
	"sinh": {goName: "math.Sinh", unary: math.Sinh},
	"cosh": {goName: "math.Cosh", unary: math.Cosh},
	"tanh": {goName: "math.Tanh", unary: math.Tanh},
	"abs":  {goName: "math.Abs", unary: math.Abs},
	"pow":  {goName: "math.Pow", binary: math.Pow},
	"min":  {goName: "math.Min", binary: math.Min},
	"max":  {goName: "math.Max", binary: math.Max},
}

// IsFunction reports whether name is a callable known to the evaluator.
func IsFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

type evalFn func(env []dynamo.Value) dynamo.Value

// compile resolves symbols to environment slots once so evaluation is a plain
// closure walk.
func compile(e Expr, slots map[string]int) (evalFn, error) {
	switch n := e.(type) {
	case Num:
		v := dynamo.Scalar(n.Value)
		return func([]dynamo.Value) dynamo.Value { return v }, nil
	case Sym:
		i, ok := slots[n.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefined, n.Name)
		}
		return func(env []dynamo.Value) dynamo.Value { return env[i] }, nil
	case Neg:
		x, err := compile(n.X, slots)
		if err != nil {
			return nil, err
		}
		return func(env []dynamo.Value) dynamo.Value { return dynamo.Neg(x(env)) }, nil
	case Binary:
		x, err := compile(n.X, slots)
		if err != nil {
			return nil, err
		}
		y, err := compile(n.Y, slots)
		if err != nil {
			return nil, err
		}
		op := binaryOp(n.Op)
		return func(env []dynamo.Value) dynamo.Value { return op(x(env), y(env)) }, nil
	case Call:
		fn, ok := functions[n.Func]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, n.Func)
		}
		if len(n.Args) != fn.arity() {
			return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, n.Func, fn.arity(), len(n.Args))
		}
		args := make([]evalFn, len(n.Args))
		for i, a := range n.Args {
			c, err := compile(a, slots)
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		if fn.binary != nil {
			return func(env []dynamo.Value) dynamo.Value {
				return dynamo.Zip(n.Func, args[0](env), args[1](env), fn.binary)
			}, nil
		}
		return func(env []dynamo.Value) dynamo.Value { return dynamo.Map(args[0](env), fn.unary) }, nil
	}
	return nil, fmt.Errorf("symbolic: unsupported node %T", e)
}

func binaryOp(op Op) func(a, b dynamo.Value) dynamo.Value {
	switch op {
	case OpAdd:
		return dynamo.Add
	case OpSub:
		return dynamo.Sub
	case OpMul:
		return dynamo.Mul
	default:
		return dynamo.Div
	}
}

// Eval evaluates e against a name environment.
func Eval(e Expr, env map[string]dynamo.Value) (dynamo.Value, error) {
	names := Symbols(e)
	slots := make(map[string]int, len(names))
	vals := make([]dynamo.Value, 0, len(names))
	for _, name := range names {
		v, ok := env[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefined, name)
		}
		slots[name] = len(vals)
		vals = append(vals, v)
	}
	fn, err := compile(e, slots)
	if err != nil {
		return nil, err
	}
	return fn(vals), nil
}

// Program is a compiled assignment list with fixed inputs and outputs.
// Programs are immutable and safe for concurrent Run calls.
type Program struct {
	inputs  []string
	slots   int
	steps   []programStep
	outputs []int
}

type programStep struct {
	slot int
	fn   evalFn
}

// Compile resolves stmts against inputs. Every symbol must be an input or
// the target of an earlier assignment; every output must be one of those too.
func Compile(inputs []string, stmts []Assign, outputs []string) (*Program, error) {
	slots := make(map[string]int, len(inputs)+len(stmts))
	for i, name := range inputs {
		slots[name] = i
	}
	p := &Program{inputs: append([]string(nil), inputs...), slots: len(inputs)}

	for _, st := range stmts {
		fn, err := compile(st.Value, slots)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Name, err)
		}
		slot, ok := slots[st.Name]
		if !ok {
			slot = p.slots
			slots[st.Name] = slot
			p.slots++
		}
		p.steps = append(p.steps, programStep{slot: slot, fn: fn})
	}

	for _, name := range outputs {
		slot, ok := slots[name]
		if !ok {
			return nil, fmt.Errorf("output %s: %w", name, ErrUndefined)
		}
		p.outputs = append(p.outputs, slot)
	}
	return p, nil
}

func (p *Program) Inputs() []string { return append([]string(nil), p.inputs...) }

// Run evaluates the program and returns the outputs in declaration order.
func (p *Program) Run(inputs ...dynamo.Value) ([]dynamo.Value, error) {
	if len(inputs) != len(p.inputs) {
		return nil, fmt.Errorf("%w: program takes %d inputs, got %d", ErrArity, len(p.inputs), len(inputs))
	}
	env := make([]dynamo.Value, p.slots)
	copy(env, inputs)
	for _, st := range p.steps {
		env[st.slot] = st.fn(env)
	}
	out := make([]dynamo.Value, len(p.outputs))
	for i, slot := range p.outputs {
		out[i] = env[slot]
	}
	return out, nil
}
