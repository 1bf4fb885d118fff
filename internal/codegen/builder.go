package codegen

import (
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/symbolic"
)

// Builder assembles the unit of one equation. The first error sticks and is
// reported by Unit.
type Builder struct {
	eq   *diffeq.Equation
	unit *Unit
	err  error
}

func NewBuilder(eq *diffeq.Equation) *Builder {
	u := newUnit()
	u.inputs = append(u.inputs, eq.VarName(), eq.TimeName())
	for _, arg := range eq.FuncArgs() {
		u.inputs = append(u.inputs, eq.ArgName(arg))
	}
	u.vars = []string{eq.VarName()}
	return &Builder{eq: eq, unit: u}
}

func (b *Builder) emit(key Key, s Stmt) {
	if b.err != nil {
		return
	}
	if name := s.Defines(); name != "" {
		if err := b.unit.declare(key, name); err != nil {
			b.err = err
			return
		}
	}
	b.unit.stmts = append(b.unit.stmts, s)
}

// Stage emits part evaluated at state y and time t (nil keeps them) and
// returns the name holding its value.
func (b *Builder) Stage(part diffeq.Part, stage string, y, t symbolic.Expr) string {
	list := b.eq.ExpressionsAt(part, stage, y, t)
	locals := b.eq.Drift()
	if part == diffeq.Diffusion {
		locals = b.eq.Diffusion()
	}
	for i, st := range list {
		key := Key{Equation: b.eq.FuncName(), Stage: stage, Local: locals[i].Name}
		if i == len(list)-1 {
			b.emit(key, Derivative{Target: st.Name, Part: part, Stage: stage, Value: st.Value})
		} else {
			b.emit(key, Assign{Target: st.Name, Value: st.Value})
		}
	}
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1].Name
}

// Let emits a scheme intermediate and returns its generated name.
func (b *Builder) Let(local string, value symbolic.Expr) string {
	name := b.eq.SchemeName(local)
	b.emit(b.schemeKey(local), Assign{Target: name, Value: value})
	return name
}

// Noise emits a draw of scale times standard normal noise shaped like the
// state variable.
func (b *Builder) Noise(local string, scale symbolic.Expr) string {
	name := b.eq.SchemeName(local)
	b.emit(b.schemeKey(local), NoiseDraw{Target: name, Like: b.eq.VarName(), Scale: scale})
	return name
}

// Param appends an input the caller binds at call time, such as array
// valued constants that cannot be written as literals. Repeated calls with
// the same local return the same name.
func (b *Builder) Param(local string) string {
	key := b.schemeKey(local)
	if name, ok := b.unit.symbols[key]; ok {
		return name
	}
	name := b.eq.SchemeName(local)
	if b.err != nil {
		return name
	}
	if err := b.unit.declare(key, name); err != nil {
		b.err = err
		return name
	}
	b.unit.inputs = append(b.unit.inputs, name)
	return name
}

// Update emits the assignment of the new state.
func (b *Builder) Update(value symbolic.Expr) {
	b.emit(Key{}, Update{Var: b.eq.VarName(), Value: value})
}

// Result emits the aggregation of the new state followed by returns.
func (b *Builder) Result(returns ...string) {
	values := append([]string{b.eq.VarName()}, returns...)
	b.emit(b.schemeKey("res"), Result{Target: b.eq.SchemeName("res"), Values: values})
}

// SchemeKey is the symbol table key of the scheme intermediate local of eq.
func SchemeKey(eq *diffeq.Equation, local string) Key {
	return Key{Equation: eq.FuncName(), Local: local, Scheme: true}
}

func (b *Builder) schemeKey(local string) Key { return SchemeKey(b.eq, local) }

// Unit returns the finished unit.
func (b *Builder) Unit() (*Unit, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.unit.check(); err != nil {
		return nil, err
	}
	return b.unit, nil
}
