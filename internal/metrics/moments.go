package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Moments tracks the running mean and variance of one state component
// with Welford's update. Value reports the mean.
type Moments struct {
	name      string
	component int
	n         int
	mean      float64
	m2        float64
}

func NewMoments(component int) *Moments {
	return &Moments{
		name:      fmt.Sprintf("mean_x%d", component),
		component: component,
	}
}

func (m *Moments) Name() string { return m.name }

func (m *Moments) Observe(y dynamo.Value, t float64) {
	if m.component >= y.Len() {
		return
	}
	x := y.At(m.component)
	m.n++
	delta := x - m.mean
	m.mean += delta / float64(m.n)
	m.m2 += delta * (x - m.mean)
}

func (m *Moments) Value() float64 { return m.mean }

func (m *Moments) Count() int { return m.n }

// Variance is the unbiased sample variance, or 0 below two samples.
func (m *Moments) Variance() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

func (m *Moments) Std() float64 { return math.Sqrt(m.Variance()) }

func (m *Moments) Reset() {
	m.n = 0
	m.mean = 0
	m.m2 = 0
}
