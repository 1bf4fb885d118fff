package codegen

import (
	"fmt"
	"strings"

	"github.com/san-kum/dynint/internal/symbolic"
)

// Merge fuses units into one statement list. Inputs are deduplicated, so a
// time symbol shared by several equations stays one parameter. Two units
// updating the same variable, or declaring the same generated name, are
// rejected.
func Merge(units ...*Unit) (*Unit, error) {
	out := newUnit()
	seenInput := make(map[string]bool)
	seenVar := make(map[string]bool)
	for _, u := range units {
		for _, v := range u.vars {
			if seenVar[v] {
				return nil, fmt.Errorf("%w: variable %s updated twice", ErrCollision, v)
			}
			seenVar[v] = true
			out.vars = append(out.vars, v)
		}
		for _, in := range u.inputs {
			if !seenInput[in] {
				seenInput[in] = true
				out.inputs = append(out.inputs, in)
			}
		}
		for key, name := range u.symbols {
			if err := out.declare(key, name); err != nil {
				return nil, err
			}
		}
		out.stmts = append(out.stmts, u.stmts...)
	}
	if err := out.check(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameForMerge returns a copy whose generated names are moved under
// prefix: "_lif_x" becomes "_n0_lif_x". State variables and the time keep
// their names. The renaming matches diffeq.Equation.RenameForMerge.
func (u *Unit) RenameForMerge(prefix string) *Unit {
	names := make(map[string]string, len(u.owners))
	for name := range u.owners {
		names[name] = rename(prefix, name)
	}
	for _, in := range u.inputs {
		if strings.HasPrefix(in, "_") {
			names[in] = rename(prefix, in)
		}
	}

	out := newUnit()
	out.vars = append(out.vars, u.vars...)
	for _, in := range u.inputs {
		out.inputs = append(out.inputs, lookup(names, in))
	}
	for key, name := range u.symbols {
		key.Equation = prefix + "_" + key.Equation
		out.symbols[key] = names[name]
		out.owners[names[name]] = key
	}
	for _, s := range u.stmts {
		out.stmts = append(out.stmts, renameStmt(s, names))
	}
	return out
}

func rename(prefix, name string) string {
	return "_" + prefix + name
}

func lookup(names map[string]string, name string) string {
	if to, ok := names[name]; ok {
		return to
	}
	return name
}

func renameStmt(s Stmt, names map[string]string) Stmt {
	switch st := s.(type) {
	case Assign:
		return Assign{Target: lookup(names, st.Target), Value: symbolic.Rename(st.Value, names)}
	case Derivative:
		return Derivative{Target: lookup(names, st.Target), Part: st.Part, Stage: st.Stage, Value: symbolic.Rename(st.Value, names)}
	case NoiseDraw:
		out := NoiseDraw{Target: lookup(names, st.Target), Like: lookup(names, st.Like)}
		if st.Scale != nil {
			out.Scale = symbolic.Rename(st.Scale, names)
		}
		return out
	case Update:
		return Update{Var: st.Var, Value: symbolic.Rename(st.Value, names)}
	case Result:
		values := make([]string, len(st.Values))
		for i, v := range st.Values {
			values[i] = lookup(names, v)
		}
		return Result{Target: lookup(names, st.Target), Values: values}
	}
	return s
}
