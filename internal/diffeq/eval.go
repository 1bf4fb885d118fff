package diffeq

import (
	"fmt"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// Func evaluates one part of an equation numerically.
type Func struct {
	prog     *symbolic.Program
	constant dynamo.Value
	nargs    int
}

// Compile builds the evaluator for part. Drift evaluators also yield the
// auxiliary returns; diffusion evaluators yield none.
func (e *Equation) Compile(part Part) (*Func, error) {
	if part == Diffusion && !e.IsStochastic() {
		return nil, ErrNoDiffusion
	}
	if part == Diffusion && e.noise != nil {
		return &Func{constant: e.noise, nargs: len(e.spec.Args)}, nil
	}

	list := e.list(part)
	inputs := append([]string{e.spec.Var, e.spec.Time}, e.spec.Args...)
	outputs := []string{list[len(list)-1].Name}
	if part == Drift {
		outputs = append(outputs, e.spec.Returns...)
	}
	prog, err := symbolic.Compile(inputs, list, outputs)
	if err != nil {
		return nil, fmt.Errorf("diffeq: compile %s of %s: %w", part, e.spec.Name, err)
	}
	return &Func{prog: prog, nargs: len(e.spec.Args)}, nil
}

// IsConstant reports whether the function ignores its inputs.
func (f *Func) IsConstant() bool { return f.prog == nil }

// Call evaluates at (y, t, args) and returns the result followed by any
// auxiliary returns.
func (f *Func) Call(y dynamo.Value, t float64, args []dynamo.Value) (dynamo.Value, []dynamo.Value, error) {
	if len(args) != f.nargs {
		return nil, nil, fmt.Errorf("%w: want %d arguments, got %d", symbolic.ErrArity, f.nargs, len(args))
	}
	if f.prog == nil {
		return f.constant, nil, nil
	}
	in := make([]dynamo.Value, 0, 2+len(args))
	in = append(in, y, dynamo.Scalar(t))
	in = append(in, args...)
	out, err := f.prog.Run(in...)
	if err != nil {
		return nil, nil, err
	}
	return out[0], out[1:], nil
}
