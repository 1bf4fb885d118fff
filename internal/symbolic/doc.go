// Package symbolic holds the expression language of equation definitions.
//
// Expressions are written in Go expression syntax and parsed with go/parser:
//
//	e, _ := symbolic.Parse("-(V - V_rest) / tau + R*I")
//	a, _ := symbolic.ParseAssign("dVdt = -(V - V_rest) / tau")
//
// The package offers the rewriting operations the schemes need to build
// Runge-Kutta stages ([Substitute], [Rename], [Symbols], [DependsOn]), two
// evaluation paths (compiled [Program]s for step closures and [Eval] over a
// name environment for interpreting generated code), and rendering back to Go
// source with the minimal parentheses that preserve evaluation order.
package symbolic
