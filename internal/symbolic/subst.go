package symbolic

import "sort"

// Walk calls fn for e and every node below it in pre-order. Returning false
// skips the children of the current node.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	switch n := e.(type) {
	case Neg:
		Walk(n.X, fn)
	case Binary:
		Walk(n.X, fn)
		Walk(n.Y, fn)
	case Call:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}

// Substitute replaces symbols named in repl. Replacement trees are inserted
// as-is and not walked again.
func Substitute(e Expr, repl map[string]Expr) Expr {
	if len(repl) == 0 {
		return e
	}
	switch n := e.(type) {
	case Sym:
		if r, ok := repl[n.Name]; ok {
			return r
		}
		return n
	case Neg:
		return Neg{X: Substitute(n.X, repl)}
	case Binary:
		return Binary{Op: n.Op, X: Substitute(n.X, repl), Y: Substitute(n.Y, repl)}
	case Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Substitute(a, repl)
		}
		return Call{Func: n.Func, Args: args}
	}
	return e
}

// Rename substitutes symbols by name.
func Rename(e Expr, names map[string]string) Expr {
	repl := make(map[string]Expr, len(names))
	for from, to := range names {
		repl[from] = Sym{Name: to}
	}
	return Substitute(e, repl)
}

// RenameAssign renames both the target and the free symbols of a.
func RenameAssign(a Assign, names map[string]string) Assign {
	name := a.Name
	if to, ok := names[name]; ok {
		name = to
	}
	return Assign{Name: name, Value: Rename(a.Value, names)}
}

// Symbols returns the sorted set of free symbol names in e.
func Symbols(e Expr) []string {
	seen := make(map[string]struct{})
	Walk(e, func(n Expr) bool {
		if s, ok := n.(Sym); ok {
			seen[s.Name] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Mentions reports whether e refers to name.
func Mentions(e Expr, name string) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if found {
			return false
		}
		if s, ok := n.(Sym); ok && s.Name == name {
			found = true
		}
		return !found
	})
	return found
}

// DependsOn reports whether the value bound by the last assignment in stmts
// reads name, directly or through an earlier assignment.
func DependsOn(stmts []Assign, name string) bool {
	if len(stmts) == 0 {
		return false
	}
	tainted := map[string]bool{name: true}
	for _, st := range stmts {
		hit := false
		Walk(st.Value, func(n Expr) bool {
			if s, ok := n.(Sym); ok && tainted[s.Name] {
				hit = true
			}
			return !hit
		})
		// Reassigning the name itself clears the taint unless it reads itself.
		tainted[st.Name] = hit
	}
	return tainted[stmts[len(stmts)-1].Name]
}
