package analysis

import (
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent from a reference
// trajectory and a companion started perturbation away along the first
// component. The companion is pulled back to the initial separation after
// every step and the logged stretch factors are averaged. Both
// trajectories see the same noise, so for SDEs this measures the exponent
// of the noise-driven flow.
func LyapunovExponent(stepper sim.Stepper, y0 dynamo.Value, args []dynamo.Value, duration, perturbation float64, seed int64) (float64, error) {
	if y0.Len() == 0 || !(perturbation > 0) {
		return 0, nil
	}

	xs := dynamo.Float64s(y0)
	xs[0] += perturbation
	y := y0.Clone()
	yp := dynamo.Value(dynamo.Array(xs))
	if y0.IsScalar() {
		yp = dynamo.Scalar(xs[0])
	}

	src := dynamo.NewSource(seed, 0)
	srcP := dynamo.NewSource(seed, 0)
	dt := stepper.Dt()
	steps := sim.Steps(duration, dt)

	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		var err error
		if y, _, err = stepper.Step(src, y, t, args...); err != nil {
			return 0, err
		}
		if yp, _, err = stepper.Step(srcP, yp, t, args...); err != nil {
			return 0, err
		}

		diff := dynamo.Sub(yp, y)
		sep := dynamo.Norm(diff)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++
		yp = dynamo.AddScaled(y, perturbation/sep, diff)
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}
