// Package diffeq holds the symbolic model of one differential equation
//
//	dy = f(y, t, args...) dt + g(y, t, args...) dW
//
// as consumed by the integration schemes. An Equation is built once from a
// Spec, validated up front, and never modified afterwards, so any number of
// integrators may share it across goroutines.
//
// Drift and diffusion are ordered assignment lists. The last assignment of
// the drift computes the derivative; earlier ones are shared temporaries,
// some of which may be exported as auxiliary returns. A stochastic equation
// carries either a diffusion list (functional noise) or a constant.
package diffeq
