package symbolic

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// Parse reads a Go arithmetic expression.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	e, err := convert(node)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for literals in
// presets and tests.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseAssign reads "name = expr".
func ParseAssign(src string) (Assign, error) {
	idx := strings.Index(src, "=")
	if idx < 0 {
		return Assign{}, fmt.Errorf("%w: %q: missing '='", ErrSyntax, src)
	}
	name := strings.TrimSpace(src[:idx])
	if !token.IsIdentifier(name) {
		return Assign{}, fmt.Errorf("%w: %q: %q is not an identifier", ErrSyntax, src, name)
	}
	value, err := Parse(src[idx+1:])
	if err != nil {
		return Assign{}, err
	}
	return Assign{Name: name, Value: value}, nil
}

// ParseAssigns reads a list of assignments in order.
func ParseAssigns(lines []string) ([]Assign, error) {
	out := make([]Assign, 0, len(lines))
	for _, line := range lines {
		a, err := ParseAssign(line)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func convert(node ast.Expr) (Expr, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return nil, fmt.Errorf("%w: unsupported literal %s", ErrSyntax, n.Value)
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Num{Value: v}, nil

	case *ast.Ident:
		if n.Name == "pi" {
			return Num{Value: math.Pi}, nil
		}
		return Sym{Name: n.Name}, nil

	case *ast.ParenExpr:
		return convert(n.X)

	case *ast.SelectorExpr:
		if pkg, ok := n.X.(*ast.Ident); ok && pkg.Name == "math" {
			switch n.Sel.Name {
			case "Pi":
				return Num{Value: math.Pi}, nil
			case "E":
				return Num{Value: math.E}, nil
			}
		}
		return nil, fmt.Errorf("%w: unsupported selector", ErrSyntax)

	case *ast.UnaryExpr:
		x, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			if num, ok := x.(Num); ok {
				return Num{Value: -num.Value}, nil
			}
			return Neg{X: x}, nil
		}
		return nil, fmt.Errorf("%w: unsupported unary operator %s", ErrSyntax, n.Op)

	case *ast.BinaryExpr:
		var op Op
		switch n.Op {
		case token.ADD:
			op = OpAdd
		case token.SUB:
			op = OpSub
		case token.MUL:
			op = OpMul
		case token.QUO:
			op = OpDiv
		default:
			return nil, fmt.Errorf("%w: unsupported operator %s", ErrSyntax, n.Op)
		}
		x, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		y, err := convert(n.Y)
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, X: x, Y: y}, nil

	case *ast.CallExpr:
		name, err := funcName(n.Fun)
		if err != nil {
			return nil, err
		}
		fn, ok := functions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		}
		if n.Ellipsis.IsValid() || len(n.Args) != fn.arity() {
			return nil, fmt.Errorf("%w: %s takes %d", ErrArity, name, fn.arity())
		}
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			if args[i], err = convert(a); err != nil {
				return nil, err
			}
		}
		return Call{Func: name, Args: args}, nil
	}
	return nil, fmt.Errorf("%w: unsupported expression %T", ErrSyntax, node)
}

// funcName accepts both exp(x) and math.Exp(x).
func funcName(fun ast.Expr) (string, error) {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name, nil
	case *ast.SelectorExpr:
		if pkg, ok := f.X.(*ast.Ident); ok && pkg.Name == "math" {
			return strings.ToLower(f.Sel.Name), nil
		}
	}
	return "", fmt.Errorf("%w: unsupported call target", ErrSyntax)
}
