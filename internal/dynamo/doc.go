// Package dynamo provides the value model shared by every integrator.
//
// A state quantity is a [Value]: either a [Scalar] or an [Array]. All arithmetic
// is elementwise and a Scalar operand broadcasts against an Array, so a scheme
// written once works for scalar and vector states alike:
//
//	y1 := dynamo.AddScaled(y0, dt, f) // y0 + dt*f
//
// Stochastic schemes draw their Wiener increments through [Value.NormalLike],
// which samples a standard normal value of the receiver's shape from an
// explicitly supplied random source. No package-level random state is used.
//
// # Thread Safety
//
// Values are treated as immutable by this module: every operation returns a
// fresh Value and never writes to its operands.
package dynamo
