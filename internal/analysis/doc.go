// Package analysis measures integrator behaviour on trajectories.
//
//   - [ConvergenceOrder]: empirical order from errors at several step sizes
//   - [StepErrors]: global errors of one scheme against an exact solution
//   - [PowerSpectrum]: magnitude spectrum of a sampled component
//   - [LyapunovExponent]: largest exponent by two-trajectory renormalisation
//   - [ArgSweep]: long-run values of a component across an argument range
//   - [NewPhasePortrait]: two components of a recorded run
//
// # Convergence
//
// A scheme of order p has global error C*dt^p, so the slope of log error
// against log dt estimates p:
//
//	errs, _ := analysis.StepErrors(build, y0, nil, 1, dts, exact)
//	p, _ := analysis.ConvergenceOrder(dts, errs)
package analysis
