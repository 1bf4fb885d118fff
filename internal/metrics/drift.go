package metrics

import (
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Drift reports the largest relative change of an invariant from its value
// at the first observed state.
type Drift struct {
	name      string
	invariant func(dynamo.Value) float64
	initial   float64
	maxDrift  float64
	samples   int
}

// NewDrift tracks invariant; nil tracks the Euclidean norm of the state.
func NewDrift(name string, invariant func(dynamo.Value) float64) *Drift {
	if invariant == nil {
		invariant = dynamo.Norm
	}
	return &Drift{
		name:      name,
		invariant: invariant,
	}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(y dynamo.Value, t float64) {
	v := d.invariant(y)
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
