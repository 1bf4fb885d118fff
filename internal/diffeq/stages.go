package diffeq

import (
	"github.com/san-kum/dynint/internal/symbolic"
)

// TempName is the generated name of a temporary: "_<func>_<local>" with a
// "__<stage>" suffix for non-empty stage tags. Identifiers never contain
// "__", so stage copies cannot meet user temporaries.
func (e *Equation) TempName(local, stage string) string {
	name := "_" + e.spec.Name + "_" + local
	if stage != "" {
		name += "__" + stage
	}
	return name
}

// SchemeName is the generated name of a scheme intermediate such as a noise
// draw or an intermediate state: "_<func>__<local>".
func (e *Equation) SchemeName(local string) string {
	return "_" + e.spec.Name + "__" + local
}

// ArgName is the qualified name of an extra argument in generated code.
func (e *Equation) ArgName(arg string) string {
	return e.TempName(arg, "")
}

// ResultName is the generated name of the value computed by part at stage.
func (e *Equation) ResultName(part Part, stage string) string {
	list := e.list(part)
	if len(list) == 0 {
		return ""
	}
	return e.TempName(list[len(list)-1].Name, stage)
}

// ReturnNames lists the generated names of the auxiliary returns at stage.
func (e *Equation) ReturnNames(stage string) []string {
	out := make([]string, len(e.spec.Returns))
	for i, r := range e.spec.Returns {
		out[i] = e.TempName(r, stage)
	}
	return out
}

// ExpressionsAt re-derives the part's assignments as if evaluated at state
// y and time t. Temporaries are renamed with the stage tag and arguments are
// qualified. A nil y or t keeps the plain variable or time symbol.
func (e *Equation) ExpressionsAt(part Part, stage string, y, t symbolic.Expr) []symbolic.Assign {
	if y == nil {
		y = symbolic.S(e.spec.Var)
	}
	if t == nil {
		t = symbolic.S(e.spec.Time)
	}
	list := e.list(part)
	repl := make(map[string]symbolic.Expr, 2+len(e.spec.Args)+len(list))
	repl[e.spec.Var] = y
	repl[e.spec.Time] = t
	for _, arg := range e.spec.Args {
		repl[arg] = symbolic.S(e.ArgName(arg))
	}

	out := make([]symbolic.Assign, len(list))
	for i, st := range list {
		out[i] = symbolic.Assign{
			Name:  e.TempName(st.Name, stage),
			Value: symbolic.Substitute(st.Value, repl),
		}
		repl[st.Name] = symbolic.S(out[i].Name)
	}
	return out
}

// RenameForMerge returns a copy of the equation namespaced under prefix, so
// every generated temporary and qualified argument is renamed
// deterministically.
func (e *Equation) RenameForMerge(prefix string) *Equation {
	c := *e
	c.spec = normalize(e.spec)
	c.spec.Name = prefix + "_" + e.spec.Name
	return &c
}
