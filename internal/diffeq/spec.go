package diffeq

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Spec is the serialisable form of an equation.
//
//	name: lif
//	var: V
//	args: [I, tau]
//	drift:
//	  - lam = -1 / tau
//	  - dVdt = lam * V + I / tau
//	returns: [lam]
//	noise: 0.5
type Spec struct {
	Name      string   `yaml:"name" json:"name"`
	Var       string   `yaml:"var" json:"var"`
	Time      string   `yaml:"time,omitempty" json:"time,omitempty"`
	Args      []string `yaml:"args,omitempty" json:"args,omitempty"`
	Drift     []string `yaml:"drift" json:"drift"`
	Diffusion []string `yaml:"diffusion,omitempty" json:"diffusion,omitempty"`
	Noise     Quantity `yaml:"noise,omitempty" json:"noise,omitempty"`
	Returns   []string `yaml:"returns,omitempty" json:"returns,omitempty"`

	// Stochastic asserts that the equation has a noise term. Diffusion or
	// Noise make it stochastic regardless.
	Stochastic bool `yaml:"stochastic,omitempty" json:"stochastic,omitempty"`
}

// Quantity is a number or a list of numbers in yaml. A single number
// becomes a dynamo.Scalar, anything longer a dynamo.Array.
type Quantity []float64

func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*q = Quantity{v}
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*q = vs
		return nil
	}
	return fmt.Errorf("diffeq: line %d: expected a number or a list of numbers", node.Line)
}

func (q Quantity) MarshalYAML() (interface{}, error) {
	if len(q) == 1 {
		return q[0], nil
	}
	return []float64(q), nil
}

// Value returns nil for an empty quantity.
func (q Quantity) Value() dynamo.Value {
	if len(q) == 0 {
		return nil
	}
	return dynamo.FromFloat64s(q)
}

// QuantityOf converts a value back to its serialisable form.
func QuantityOf(v dynamo.Value) Quantity {
	if v == nil {
		return nil
	}
	return Quantity(dynamo.Float64s(v))
}

// Parse decodes a yaml Spec and builds the equation.
func Parse(data []byte) (*Equation, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("diffeq: parse: %w", err)
	}
	return New(spec)
}
