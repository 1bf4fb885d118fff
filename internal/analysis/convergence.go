package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
)

// ErrTooFewPoints is returned by ConvergenceOrder for fewer than two usable
// samples.
var ErrTooFewPoints = errors.New("analysis: need at least two positive errors")

// StepError integrates y0 over horizon with stepper and returns the
// Euclidean distance of the final state from exact.
func StepError(stepper sim.Stepper, y0 dynamo.Value, args []dynamo.Value, horizon float64, exact dynamo.Value) (float64, error) {
	res, err := sim.New(stepper).Run(context.Background(), y0, sim.Config{Duration: horizon, Args: args})
	if err != nil {
		return 0, err
	}
	return dynamo.Norm(dynamo.Sub(res.Final(), exact)), nil
}

// StepErrors builds a stepper for every dt and measures its StepError
// against exact(horizon).
func StepErrors(build func(dt float64) (sim.Stepper, error), y0 dynamo.Value, args []dynamo.Value, horizon float64, dts []float64, exact func(t float64) dynamo.Value) ([]float64, error) {
	want := exact(horizon)
	errs := make([]float64, len(dts))
	for i, dt := range dts {
		stepper, err := build(dt)
		if err != nil {
			return nil, fmt.Errorf("dt=%g: %w", dt, err)
		}
		if errs[i], err = StepError(stepper, y0, args, horizon, want); err != nil {
			return nil, fmt.Errorf("dt=%g: %w", dt, err)
		}
	}
	return errs, nil
}

// ConvergenceOrder fits log(err) = c + p log(dt) by least squares and
// returns p. Pairs with a non-positive error are skipped.
func ConvergenceOrder(dts, errs []float64) (float64, error) {
	if len(dts) != len(errs) {
		return 0, fmt.Errorf("analysis: %d step sizes for %d errors", len(dts), len(errs))
	}
	var xs, ys []float64
	for i := range dts {
		if errs[i] > 0 && dts[i] > 0 && !math.IsInf(errs[i], 0) {
			xs = append(xs, math.Log(dts[i]))
			ys = append(ys, math.Log(errs[i]))
		}
	}
	if len(xs) < 2 {
		return 0, ErrTooFewPoints
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope, nil
}

// Halvings returns n step sizes starting at dt0, each half the previous.
func Halvings(dt0 float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = dt0 / math.Pow(2, float64(i))
	}
	return out
}
