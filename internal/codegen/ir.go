package codegen

import (
	"errors"
	"fmt"

	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/symbolic"
)

var (
	// ErrCollision indicates two statements declaring the same generated name.
	ErrCollision = errors.New("codegen: name collision")

	// ErrUndefined indicates a statement reading a name nothing defines.
	ErrUndefined = errors.New("codegen: undefined name")
)

// Stmt is one statement of a code unit.
type Stmt interface {
	// Defines is the name the statement binds, if any.
	Defines() string
	stmt()
}

// Assign binds a shared temporary or a scheme-level intermediate.
type Assign struct {
	Target string
	Value  symbolic.Expr
}

// Derivative binds the drift or diffusion value of one stage.
type Derivative struct {
	Target string
	Part   diffeq.Part
	Stage  string
	Value  symbolic.Expr
}

// NoiseDraw binds Scale times fresh standard normal noise shaped like Like.
// A nil Scale draws unit noise.
type NoiseDraw struct {
	Target string
	Like   string
	Scale  symbolic.Expr
}

// Update assigns the new state of Var.
type Update struct {
	Var   string
	Value symbolic.Expr
}

// Result aggregates the new state and the auxiliary returns.
type Result struct {
	Target string
	Values []string
}

func (s Assign) Defines() string     { return s.Target }
func (s Derivative) Defines() string { return s.Target }
func (s NoiseDraw) Defines() string  { return s.Target }
func (s Update) Defines() string     { return "" }
func (s Result) Defines() string     { return s.Target }

func (Assign) stmt()     {}
func (Derivative) stmt() {}
func (NoiseDraw) stmt()  {}
func (Update) stmt()     {}
func (Result) stmt()     {}

// reads lists the names a statement depends on.
func reads(s Stmt) []string {
	switch st := s.(type) {
	case Assign:
		return symbolic.Symbols(st.Value)
	case Derivative:
		return symbolic.Symbols(st.Value)
	case NoiseDraw:
		names := []string{st.Like}
		if st.Scale != nil {
			names = append(names, symbolic.Symbols(st.Scale)...)
		}
		return names
	case Update:
		return symbolic.Symbols(st.Value)
	case Result:
		return st.Values
	}
	return nil
}

// Key identifies a generated symbol by the equation namespace, the stage
// tag and the local name inside the equation.
type Key struct {
	Equation string
	Stage    string
	Local    string
	// Scheme marks intermediates of the scheme, which live apart from the
	// temporaries of the equation.
	Scheme bool
}

func (k Key) String() string {
	local := k.Local
	if k.Scheme {
		local = "#" + local
	}
	if k.Stage == "" {
		return k.Equation + "." + local
	}
	return k.Equation + "." + local + "@" + k.Stage
}

// Unit is the generated update of one or more equations. Units are
// immutable once built.
type Unit struct {
	inputs  []string
	vars    []string
	stmts   []Stmt
	symbols map[Key]string
	owners  map[string]Key
}

func newUnit() *Unit {
	return &Unit{symbols: make(map[Key]string), owners: make(map[string]Key)}
}

func (u *Unit) declare(key Key, name string) error {
	if prev, ok := u.owners[name]; ok {
		return fmt.Errorf("%w: %s declared by %s and %s", ErrCollision, name, prev, key)
	}
	if prev, ok := u.symbols[key]; ok {
		return fmt.Errorf("%w: %s already bound to %s", ErrCollision, key, prev)
	}
	u.symbols[key] = name
	u.owners[name] = key
	return nil
}

// Inputs lists the parameters in positional order: for each equation its
// state variable, the time, then its qualified arguments.
func (u *Unit) Inputs() []string { return append([]string(nil), u.inputs...) }

// Vars lists the state variables the unit updates.
func (u *Unit) Vars() []string { return append([]string(nil), u.vars...) }

func (u *Unit) Stmts() []Stmt { return append([]Stmt(nil), u.stmts...) }

// Lookup resolves a symbol table key to its generated name.
func (u *Unit) Lookup(key Key) (string, bool) {
	name, ok := u.symbols[key]
	return name, ok
}

// Results lists the Result statements in order.
func (u *Unit) Results() []Result {
	var out []Result
	for _, s := range u.stmts {
		if r, ok := s.(Result); ok {
			out = append(out, r)
		}
	}
	return out
}

// check verifies that every name read is an input, a state variable or
// defined by an earlier statement.
func (u *Unit) check() error {
	known := make(map[string]bool, len(u.inputs)+len(u.stmts))
	for _, in := range u.inputs {
		known[in] = true
	}
	for _, s := range u.stmts {
		for _, name := range reads(s) {
			if !known[name] {
				return fmt.Errorf("%w: %s", ErrUndefined, name)
			}
		}
		if d := s.Defines(); d != "" {
			known[d] = true
		}
	}
	return nil
}
