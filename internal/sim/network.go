package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
)

// Node is one equation of a network with its initial state and arguments.
type Node struct {
	Equation *diffeq.Equation
	Init     dynamo.Value
	Args     []dynamo.Value
}

// Network steps several equations together with one scheme. Nodes are
// advanced in order and share one random source, so the fused and unfused
// modes draw identical noise.
//
// In fused mode every equation is namespaced with "n<i>", the code units of
// all nodes are merged and each step interprets the merged unit once. Fused
// networks need distinct state variable names.
type Network struct {
	nodes  []Node
	steps  []*integrators.Integrator
	merged *codegen.Unit
}

// NewNetwork builds one integrator per node. opts.Fused selects the fused
// mode and implies AheadOfTime.
func NewNetwork(method string, opts integrators.Options, nodes ...Node) (*Network, error) {
	if len(nodes) == 0 {
		return nil, errors.New("sim: empty network")
	}
	build, err := integrators.Get(method)
	if err != nil {
		return nil, err
	}
	if opts.Fused {
		opts.AheadOfTime = true
	}

	n := &Network{nodes: nodes}
	units := make([]*codegen.Unit, 0, len(nodes))
	for i, node := range nodes {
		eq := node.Equation
		if opts.Fused {
			eq = eq.RenameForMerge(fmt.Sprintf("n%d", i))
		}
		in, err := build(eq, opts)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, node.Equation.FuncName(), err)
		}
		n.steps = append(n.steps, in)
		units = append(units, in.Unit())
	}

	if opts.Fused {
		if n.merged, err = codegen.Merge(units...); err != nil {
			return nil, fmt.Errorf("sim: fusing network: %w", err)
		}
	}
	logger().Debug("network built", "method", method, "nodes", len(nodes), "fused", opts.Fused)
	return n, nil
}

func (n *Network) Fused() bool { return n.merged != nil }

// Unit returns the merged unit of a fused network, or nil.
func (n *Network) Unit() *codegen.Unit { return n.merged }

func (n *Network) Dt() float64 { return n.steps[0].Dt() }

// Step advances every node from t by one step.
func (n *Network) Step(src rand.Source, ys []dynamo.Value, t float64) ([]dynamo.Value, [][]dynamo.Value, error) {
	if len(ys) != len(n.nodes) {
		return nil, nil, fmt.Errorf("sim: network has %d nodes, got %d states", len(n.nodes), len(ys))
	}
	out := make([]dynamo.Value, len(ys))
	aux := make([][]dynamo.Value, len(ys))

	if n.merged == nil {
		for i, in := range n.steps {
			y, a, err := in.Step(src, ys[i], t, n.nodes[i].Args...)
			if err != nil {
				return nil, nil, fmt.Errorf("node %d: %w", i, err)
			}
			out[i], aux[i] = y, a
		}
		return out, aux, nil
	}

	env := make(map[string]dynamo.Value)
	for i, in := range n.steps {
		inputs, err := in.UnitInputs(ys[i], t, n.nodes[i].Args...)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", i, err)
		}
		for k, v := range inputs {
			env[k] = v
		}
	}
	res, err := n.merged.Eval(src, env)
	if err != nil {
		return nil, nil, err
	}
	for i, r := range res {
		out[i], aux[i] = r[0], r[1:]
	}
	return out, aux, nil
}

// Run integrates the network over duration and returns one result per node.
func (n *Network) Run(ctx context.Context, duration float64, seed int64) ([]*Result, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("duration must be positive, got %f", duration)
	}
	dt := n.Dt()
	steps := Steps(duration, dt)

	results := make([]*Result, len(n.nodes))
	ys := make([]dynamo.Value, len(n.nodes))
	for i, node := range n.nodes {
		ys[i] = node.Init.Clone()
		results[i] = &Result{
			Method:  n.steps[i].Name(),
			Times:   []float64{0},
			States:  []dynamo.Value{ys[i]},
			Metrics: make(map[string]float64),
		}
	}

	src := dynamo.NewSource(seed, 0)
	for k := 0; k < steps; k++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		t := float64(k) * dt
		next, aux, err := n.Step(src, ys, t)
		if err != nil {
			return results, fmt.Errorf("sim: step %d: %w", k, err)
		}
		ys = next
		for i, r := range results {
			r.Times = append(r.Times, t+dt)
			r.States = append(r.States, ys[i])
			r.Aux = append(r.Aux, aux[i])
			r.StepsTaken++
		}
	}
	return results, nil
}
