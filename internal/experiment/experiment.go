package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/dynint/internal/config"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
	"github.com/san-kum/dynint/internal/sim"
	"github.com/san-kum/dynint/internal/storage"
)

func logger() *slog.Logger {
	return slog.Default().With(slog.String("component", "experiment"))
}

// Experiment is a validated configuration bound to its equation and
// integrator.
type Experiment struct {
	cfg       *config.Config
	eq        *diffeq.Equation
	in        *integrators.Integrator
	args      []dynamo.Value
	simulator *sim.Simulator
}

func New(cfg *config.Config) (*Experiment, error) {
	eq, in, args, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:       cfg,
		eq:        eq,
		in:        in,
		args:      args,
		simulator: sim.New(in),
	}, nil
}

func (e *Experiment) Setup(metrics []sim.Metric) {
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
}

func (e *Experiment) simConfig(code bool) sim.Config {
	return sim.Config{
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		Args:          e.args,
		Code:          code,
		ValidateState: true,
	}
}

// Run integrates the configured initial state. code selects the generated
// unit over the closure and needs ahead_of_time.
func (e *Experiment) Run(ctx context.Context, code bool) (*sim.Result, error) {
	logger().Info("run",
		"equation", e.eq.FuncName(),
		"method", e.in.Name(),
		"dt", e.cfg.Dt,
		"duration", e.cfg.Duration,
		"seed", e.cfg.Seed)
	return e.simulator.Run(ctx, e.cfg.InitValue(), e.simConfig(code))
}

// RunEnsemble runs cfg.Members members seeded seed, seed+1, ...
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*sim.Result, error) {
	if e.cfg.Members < 1 {
		return nil, fmt.Errorf("experiment: members must be at least 1, got %d", e.cfg.Members)
	}
	return sim.NewEnsemble(e.simulator, e.cfg.Members, e.cfg.Seed).Run(ctx, e.cfg.InitValue(), e.simConfig(false))
}

// Metadata describes a run of this experiment for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	spec := e.eq.Spec()
	return storage.RunMetadata{
		Equation: e.eq.FuncName(),
		Seed:     e.cfg.Seed,
		Dt:       e.cfg.Dt,
		Duration: e.cfg.Duration,
		Method:   e.in.Name(),
		Spec:     &spec,
	}
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Config() *config.Config              { return e.cfg }
func (e *Experiment) Equation() *diffeq.Equation          { return e.eq }
func (e *Experiment) Integrator() *integrators.Integrator { return e.in }
func (e *Experiment) Args() []dynamo.Value                { return e.args }
