package metrics

import (
	"github.com/san-kum/dynint/internal/dynamo"
)

// PathLength is the mean Euclidean length of the steps between observed
// states.
type PathLength struct {
	name  string
	prev  dynamo.Value
	sum   float64
	steps int
}

func NewPathLength() *PathLength {
	return &PathLength{
		name: "path_length",
	}
}

func (p *PathLength) Name() string {
	return p.name
}

func (p *PathLength) Observe(y dynamo.Value, t float64) {
	if p.prev != nil && p.prev.Len() == y.Len() {
		p.sum += dynamo.Norm(dynamo.Sub(y, p.prev))
		p.steps++
	}
	p.prev = y
}

func (p *PathLength) Value() float64 {
	if p.steps == 0 {
		return 0
	}
	return p.sum / float64(p.steps)
}

func (p *PathLength) Reset() {
	p.prev = nil
	p.sum = 0
	p.steps = 0
}
