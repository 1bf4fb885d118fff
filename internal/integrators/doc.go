// Package integrators implements the one-step schemes for ordinary and
// stochastic differential equations:
//
//	euler, heun, midpoint, rk2, rk3, rk4, rk4_alternative,
//	exponential, milstein_ito (alias milstein), milstein_stra
//
// Each scheme consumes a diffeq.Equation and yields an Integrator with two
// execution paths: a numeric step closure that is always built, and a
// generated code unit built under Options.AheadOfTime. Both compute the same
// update. Randomness is passed explicitly to every stochastic step, so
// integrators are safe to share across goroutines and runs are reproducible
// from a seed.
//
// Obtain integrators through Get:
//
//	build, err := integrators.Get("rk4")
//	in, err := build(eq, integrators.Options{Dt: 0.01})
//	y1, aux, err := in.Step(nil, y0, t, args...)
package integrators
