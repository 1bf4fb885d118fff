package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
)

var gbm = diffeq.MustNew(diffeq.Spec{
	Name:      "gbm",
	Var:       "S",
	Args:      []string{"mu", "sigma"},
	Drift:     []string{"dSdt = mu * S"},
	Diffusion: []string{"g = sigma * S"},
})

func networkNodes() []Node {
	return []Node{
		{Equation: ou, Init: dynamo.Array{1, -1}, Args: []dynamo.Value{dynamo.Scalar(0.5)}},
		{Equation: gbm, Init: dynamo.Scalar(2), Args: []dynamo.Value{dynamo.Scalar(0.1), dynamo.Scalar(0.2)}},
		{Equation: decay, Init: dynamo.Scalar(1)},
	}
}

func TestNetworkFusedMatchesSequential(t *testing.T) {
	for _, method := range []string{"euler", "heun", "milstein"} {
		t.Run(method, func(t *testing.T) {
			seq, err := NewNetwork(method, integrators.Options{Dt: 0.01}, networkNodes()...)
			if err != nil {
				t.Fatal(err)
			}
			fused, err := NewNetwork(method, integrators.Options{Dt: 0.01, Fused: true}, networkNodes()...)
			if err != nil {
				t.Fatal(err)
			}
			if seq.Fused() || !fused.Fused() {
				t.Fatal("fused flag not honoured")
			}

			a, err := seq.Run(context.Background(), 0.5, 3)
			if err != nil {
				t.Fatal(err)
			}
			b, err := fused.Run(context.Background(), 0.5, 3)
			if err != nil {
				t.Fatal(err)
			}
			for i := range a {
				if !dynamo.EqualApprox(a[i].Final(), b[i].Final(), 1e-9) {
					t.Errorf("node %d: sequential %v, fused %v", i, a[i].Final(), b[i].Final())
				}
				if a[i].StepsTaken != 50 {
					t.Errorf("node %d took %d steps", i, a[i].StepsTaken)
				}
			}
		})
	}
}

func TestNetworkFusedUnit(t *testing.T) {
	n, err := NewNetwork("rk4", integrators.Options{Dt: 0.1, Fused: true},
		Node{Equation: decay, Init: dynamo.Scalar(1)},
		Node{Equation: diffeq.MustNew(diffeq.Spec{Name: "grow", Var: "z", Drift: []string{"dzdt = z"}}), Init: dynamo.Scalar(1)},
	)
	if err != nil {
		t.Fatal(err)
	}
	u := n.Unit()
	if got := u.Vars(); len(got) != 2 || got[0] != "y" || got[1] != "z" {
		t.Errorf("vars = %v", got)
	}
	if _, ok := u.Lookup(codegen.Key{Equation: "n1_grow", Local: "res", Scheme: true}); !ok {
		t.Error("second node result not namespaced")
	}
}

func TestNetworkErrors(t *testing.T) {
	if _, err := NewNetwork("euler", integrators.Options{Dt: 0.1}); err == nil {
		t.Error("expected error for an empty network")
	}
	if _, err := NewNetwork("leapfrog", integrators.Options{Dt: 0.1}, Node{Equation: decay, Init: dynamo.Scalar(1)}); !errors.Is(err, integrators.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}

	// Two nodes integrating the same variable cannot share a fused routine.
	_, err := NewNetwork("euler", integrators.Options{Dt: 0.1, Fused: true},
		Node{Equation: decay, Init: dynamo.Scalar(1)},
		Node{Equation: decay, Init: dynamo.Scalar(2)},
	)
	if !errors.Is(err, codegen.ErrCollision) {
		t.Errorf("expected ErrCollision, got %v", err)
	}

	n, err := NewNetwork("euler", integrators.Options{Dt: 0.1}, Node{Equation: decay, Init: dynamo.Scalar(1)})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := n.Step(nil, nil, 0); err == nil {
		t.Error("expected error for a state count mismatch")
	}
}

func TestNetworkArgCount(t *testing.T) {
	for _, fused := range []bool{false, true} {
		n, err := NewNetwork("euler", integrators.Options{Dt: 0.1, Fused: fused},
			Node{Equation: gbm, Init: dynamo.Scalar(2), Args: []dynamo.Value{dynamo.Scalar(0.1)}},
			Node{Equation: decay, Init: dynamo.Scalar(1)},
		)
		if err != nil {
			t.Fatal(err)
		}
		_, _, err = n.Step(dynamo.NewSource(1, 0), []dynamo.Value{dynamo.Scalar(2), dynamo.Scalar(1)}, 0)
		if !errors.Is(err, integrators.ErrArgCount) {
			t.Errorf("fused=%v: expected ErrArgCount, got %v", fused, err)
		}
	}
}
