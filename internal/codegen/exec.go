package codegen

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/symbolic"
)

// Eval interprets the unit. inputs maps every name of Inputs to its value;
// the result holds the values of each Result statement in order. src may be
// nil when the unit draws no noise.
func (u *Unit) Eval(src rand.Source, inputs map[string]dynamo.Value) ([][]dynamo.Value, error) {
	env := make(map[string]dynamo.Value, len(inputs)+len(u.stmts))
	for _, name := range u.inputs {
		v, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("%w: input %s", ErrUndefined, name)
		}
		env[name] = v
	}

	var results [][]dynamo.Value
	for _, s := range u.stmts {
		switch st := s.(type) {
		case Assign:
			if err := bind(env, st.Target, st.Value); err != nil {
				return nil, err
			}
		case Derivative:
			if err := bind(env, st.Target, st.Value); err != nil {
				return nil, err
			}
		case NoiseDraw:
			if src == nil {
				return nil, fmt.Errorf("codegen: %s: noise draw without a random source", st.Target)
			}
			xi := env[st.Like].NormalLike(src)
			if st.Scale != nil {
				scale, err := symbolic.Eval(st.Scale, env)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", st.Target, err)
				}
				xi = dynamo.Mul(scale, xi)
			}
			env[st.Target] = xi
		case Update:
			if err := bind(env, st.Var, st.Value); err != nil {
				return nil, err
			}
		case Result:
			vals := make([]dynamo.Value, len(st.Values))
			for i, name := range st.Values {
				vals[i] = env[name]
			}
			results = append(results, vals)
		}
	}
	return results, nil
}

func bind(env map[string]dynamo.Value, name string, e symbolic.Expr) error {
	v, err := symbolic.Eval(e, env)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	env[name] = v
	return nil
}
