package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dynint/internal/dynamo"
)

// ErrNoCode is returned by Run when Config.Code is set and the stepper has
// no generated code path.
var ErrNoCode = errors.New("sim: stepper has no code path")

func logger() *slog.Logger {
	return slog.Default().With(slog.String("component", "sim"))
}

type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
}

func New(stepper Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Steps is the number of fixed steps covering duration.
func Steps(duration, dt float64) int {
	return int(math.Round(duration / dt))
}

// Run integrates y0 from t = 0 over cfg.Duration, recording every state.
// Cancellation returns the partial result with the context error.
func (s *Simulator) Run(ctx context.Context, y0 dynamo.Value, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	step, err := s.stepFunc(cfg)
	if err != nil {
		return nil, err
	}

	dt := s.stepper.Dt()
	steps := Steps(cfg.Duration, dt)
	result := &Result{
		Method:  s.stepper.Name(),
		Times:   make([]float64, 0, steps+1),
		States:  make([]dynamo.Value, 0, steps+1),
		Aux:     make([][]dynamo.Value, 0, steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	src := dynamo.NewSource(cfg.Seed, cfg.Stream)
	y := y0.Clone()
	t := 0.0

	result.States = append(result.States, y)
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(y, t)
		}

		y1, aux, err := step(src, y, t, cfg.Args...)
		if err != nil {
			return result, fmt.Errorf("sim: step %d (t=%g): %w", i, t, err)
		}

		if cfg.ValidateState && !dynamo.IsValid(y1) {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		y = y1
		t = float64(i+1) * dt
		result.StepsTaken++

		for _, obs := range s.observers {
			obs.OnStep(y, aux, t)
		}

		result.States = append(result.States, y)
		result.Aux = append(result.Aux, aux)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	logger().Debug("run finished",
		"method", result.Method,
		"steps", result.StepsTaken,
		"errors", len(result.Errors))
	return result, nil
}

func (s *Simulator) stepFunc(cfg Config) (StepFunc, error) {
	if !cfg.Code {
		return s.stepper.Step, nil
	}
	cs, ok := s.stepper.(CodeStepper)
	if !ok {
		return nil, ErrNoCode
	}
	return cs.StepCode, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.stepper == nil {
		return errors.New("sim: nil stepper")
	}
	if dt := s.stepper.Dt(); !(dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// RunWithCallback steps until the duration is covered or callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, y0 dynamo.Value, cfg Config, callback func(y dynamo.Value, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	step, err := s.stepFunc(cfg)
	if err != nil {
		return err
	}

	src := dynamo.NewSource(cfg.Seed, cfg.Stream)
	dt := s.stepper.Dt()
	steps := Steps(cfg.Duration, dt)
	y := y0.Clone()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		if !callback(y, t) {
			return nil
		}

		if y, _, err = step(src, y, t, cfg.Args...); err != nil {
			return err
		}
		if cfg.ValidateState && !dynamo.IsValid(y) {
			return SimError{Time: t + dt, Step: i, Message: "invalid state (NaN/Inf)"}
		}
	}
	return nil
}
