package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynint/internal/config"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/experiment"
	"github.com/san-kum/dynint/internal/sim"
	"github.com/san-kum/dynint/internal/storage"
)

func logger() *slog.Logger {
	return slog.Default().With(slog.String("component", "automation"))
}

// Scenario is a scripted sequence of runs.
//
//	name: schemes
//	steps:
//	  - preset: ou
//	    method: heun
//	    save: true
//	  - config:
//	      method: rk4
//	      dt: 0.1
//	      duration: 1
//	      init: 1
//	      equation: {name: growth, var: x, drift: [dxdt = x]}
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or an inline config and overrides the
// fields that are set.
type ScenarioStep struct {
	Name     string                     `yaml:"name"`
	Preset   string                     `yaml:"preset"`
	Config   *config.Config             `yaml:"config"`
	Method   string                     `yaml:"method"`
	Dt       float64                    `yaml:"dt"`
	Duration float64                    `yaml:"duration"`
	Seed     int64                      `yaml:"seed"`
	Args     map[string]diffeq.Quantity `yaml:"args"`
	Code     bool                       `yaml:"code"`
	Save     bool                       `yaml:"save"`
}

// StepResult is the outcome of one scenario step. RunID is set for saved
// steps.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// resolve builds the configuration of the step.
func (s ScenarioStep) resolve(registry *experiment.Registry) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		c, err := registry.GetConfig(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Config != nil:
		cfg = s.Config.Clone()
	default:
		return nil, errors.New("step needs a preset or a config")
	}

	if s.Method != "" {
		cfg.Method = s.Method
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Args {
		if cfg.Args == nil {
			cfg.Args = make(map[string]diffeq.Quantity)
		}
		cfg.Args[k] = v
	}
	if s.Code {
		cfg.AheadOfTime = true
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Steps marked save are written to store, which may be nil when none is.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		logger().Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.resolve(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp.Setup(registry.DefaultMetrics())

		result, err := exp.Run(ctx, step.Code)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := StepResult{Name: name, Result: result}
		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			if out.RunID, err = store.Save(exp.Metadata(), result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, out)
	}
	return results, nil
}

// MonteCarloConfig perturbs the initial state of Base uniformly by up to
// Perturbation per component. Trial i runs with seed Base.Seed+i.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	// Threshold bounds the final components of a stable trial. Zero means 1e6.
	Threshold float64
	Seed      int64
}

type MonteCarloResult struct {
	TrialID int
	Init    dynamo.Value
	Final   dynamo.Value
	Stable  bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo: need at least one trial, got %d", cfg.NumTrials)
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 1e6
	}
	rng := rand.New(dynamo.NewSource(cfg.Seed, 1))
	base := dynamo.Float64s(cfg.Base.InitValue())

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		init := make([]float64, len(base))
		for i, v := range base {
			init[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		trialCfg := cfg.Base.Clone()
		trialCfg.Init = diffeq.Quantity(init)
		trialCfg.Seed = cfg.Base.Seed + int64(trial)
		exp, err := experiment.New(trialCfg)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx, false)
		if err != nil {
			return nil, err
		}

		final := result.Final()
		stable := len(result.Errors) == 0
		for i := 0; stable && i < final.Len(); i++ {
			stable = math.Abs(final.At(i)) <= threshold
		}
		results = append(results, MonteCarloResult{
			TrialID: trial,
			Init:    trialCfg.InitValue(),
			Final:   final,
			Stable:  stable,
		})
	}
	logger().Debug("monte carlo done", "trials", cfg.NumTrials)
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
