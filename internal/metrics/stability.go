package metrics

import (
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Stability is the fraction of observed states whose components all stay
// within threshold in magnitude.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(y dynamo.Value, t float64) {
	s.samples++
	for i := 0; i < y.Len(); i++ {
		if math.Abs(y.At(i)) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Finite counts observed states holding NaN or Inf. Value is the count.
type Finite struct {
	bad int
}

func NewFinite() *Finite { return &Finite{} }

func (f *Finite) Name() string { return "non_finite" }

func (f *Finite) Observe(y dynamo.Value, t float64) {
	if !dynamo.IsValid(y) {
		f.bad++
	}
}

func (f *Finite) Value() float64 { return float64(f.bad) }

func (f *Finite) Reset() { f.bad = 0 }
