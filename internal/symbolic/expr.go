package symbolic

import (
	"math"
	"strconv"
	"strings"
)

// Expr is an immutable expression tree node.
type Expr interface {
	// String renders the expression as Go source.
	String() string
	prec() int
}

// Op is a binary arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

// Go operator precedences, with unary and atoms above them.
const (
	precAdd   = 4
	precMul   = 5
	precUnary = 6
	precAtom  = 7
)

func (o Op) prec() int {
	if o == OpMul || o == OpDiv {
		return precMul
	}
	return precAdd
}

type Num struct{ Value float64 }

type Sym struct{ Name string }

type Neg struct{ X Expr }

type Binary struct {
	Op   Op
	X, Y Expr
}

type Call struct {
	Func string
	Args []Expr
}

// Assign binds Name to the value of an expression.
type Assign struct {
	Name  string
	Value Expr
}

func (a Assign) String() string { return a.Name + " = " + a.Value.String() }

func (n Num) prec() int {
	if math.Signbit(n.Value) {
		return precUnary
	}
	return precAtom
}

func (n Num) String() string {
	switch {
	case math.IsNaN(n.Value):
		return "math.NaN()"
	case math.IsInf(n.Value, 1):
		return "math.Inf(1)"
	case math.IsInf(n.Value, -1):
		return "math.Inf(-1)"
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (s Sym) prec() int      { return precAtom }
func (s Sym) String() string { return s.Name }

func (n Neg) prec() int { return precUnary }

func (n Neg) String() string {
	if n.X.prec() <= precUnary {
		return "-(" + n.X.String() + ")"
	}
	return "-" + n.X.String()
}

func (b Binary) prec() int { return b.Op.prec() }

// String parenthesizes the right operand at equal precedence so a re-parse
// keeps the left-to-right evaluation order of the tree.
func (b Binary) String() string {
	p := b.Op.prec()
	left := b.X.String()
	if b.X.prec() < p {
		left = "(" + left + ")"
	}
	right := b.Y.String()
	if b.Y.prec() <= p {
		right = "(" + right + ")"
	}
	return left + " " + string(b.Op) + " " + right
}

func (c Call) prec() int { return precAtom }

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	name := c.Func
	if fn, ok := functions[c.Func]; ok {
		name = fn.goName
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

// Helpers for building trees in code.

func N(v float64) Expr       { return Num{Value: v} }
func S(name string) Expr     { return Sym{Name: name} }
func Add(x, y Expr) Expr     { return Binary{Op: OpAdd, X: x, Y: y} }
func Sub(x, y Expr) Expr     { return Binary{Op: OpSub, X: x, Y: y} }
func Mul(x, y Expr) Expr     { return Binary{Op: OpMul, X: x, Y: y} }
func Div(x, y Expr) Expr     { return Binary{Op: OpDiv, X: x, Y: y} }

func Fn(name string, args ...Expr) Expr { return Call{Func: name, Args: args} }

// Sum folds terms left to right. It returns 0 for no terms.
func Sum(terms ...Expr) Expr {
	if len(terms) == 0 {
		return N(0)
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = Add(out, t)
	}
	return out
}
