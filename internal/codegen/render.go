package codegen

import (
	"fmt"
	"strings"
)

// NoiseFunc is the helper the rendered code calls for a standard normal
// sample; it receives the state element the noise is shaped like.
const NoiseFunc = "normalSample"

func emitLine(b *strings.Builder, indent, format string, args ...interface{}) {
	b.WriteString(indent)
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func renderStmt(b *strings.Builder, indent string, s Stmt) {
	switch st := s.(type) {
	case Assign:
		emitLine(b, indent, "%s := %s", st.Target, st.Value)
	case Derivative:
		emitLine(b, indent, "%s := %s", st.Target, st.Value)
	case NoiseDraw:
		if st.Scale == nil {
			emitLine(b, indent, "%s := %s(%s)", st.Target, NoiseFunc, st.Like)
			return
		}
		emitLine(b, indent, "%s := %s * %s(%s)", st.Target, parenthesize(st.Scale.String()), NoiseFunc, st.Like)
	case Update:
		emitLine(b, indent, "%s = %s", st.Var, st.Value)
	case Result:
		emitLine(b, indent, "%s := [...]float64{%s}", st.Target, strings.Join(st.Values, ", "))
	}
}

// parenthesize wraps s unless it is a plain identifier or literal.
func parenthesize(s string) string {
	if strings.ContainsAny(s, " +-*/") {
		return "(" + s + ")"
	}
	return s
}

// Render emits the statement list, one Go statement per line.
func Render(u *Unit) string {
	var b strings.Builder
	for _, s := range u.stmts {
		renderStmt(&b, "", s)
	}
	return b.String()
}

// RenderFunc wraps the unit in a standalone function taking the inputs
// positionally and returning every result value in order. Temporaries that
// nothing reads are discarded explicitly so the function compiles.
func RenderFunc(u *Unit, name string) string {
	var b strings.Builder

	params := make([]string, len(u.inputs))
	for i, in := range u.inputs {
		params[i] = in + " float64"
	}

	results := u.Results()
	width := 0
	for _, r := range results {
		width += len(r.Values)
	}

	emitLine(&b, "", "func %s(%s) [%d]float64 {", name, strings.Join(params, ", "), width)
	for _, s := range u.stmts {
		renderStmt(&b, "\t", s)
	}

	read := make(map[string]bool)
	for _, s := range u.stmts {
		for _, n := range reads(s) {
			read[n] = true
		}
	}
	for _, s := range u.stmts {
		if _, ok := s.(Result); ok {
			continue
		}
		if d := s.Defines(); d != "" && !read[d] {
			emitLine(&b, "\t", "_ = %s", d)
		}
	}

	if len(results) == 1 {
		emitLine(&b, "\t", "return %s", results[0].Target)
	} else {
		var elems []string
		for _, r := range results {
			for i := range r.Values {
				elems = append(elems, fmt.Sprintf("%s[%d]", r.Target, i))
			}
		}
		emitLine(&b, "\t", "return [%d]float64{%s}", width, strings.Join(elems, ", "))
	}
	emitLine(&b, "", "}")
	return b.String()
}
