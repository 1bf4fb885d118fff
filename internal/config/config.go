package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
)

const (
	DefaultMethod   = "rk4"
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultInit     = 1.0
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config describes one run: the equation, the scheme and the run length.
//
//	method: milstein
//	dt: 0.001
//	duration: 5
//	init: [1, 2]
//	args:
//	  sigma: 0.4
//	equation:
//	  var: x
//	  args: [sigma]
//	  drift: [dxdt = -x*x*x]
//	  diffusion: [g = sigma * x]
type Config struct {
	Method      string                     `yaml:"method"`
	Beta        float64                    `yaml:"beta,omitempty"`
	Dt          float64                    `yaml:"dt"`
	Duration    float64                    `yaml:"duration"`
	Seed        int64                      `yaml:"seed"`
	AheadOfTime bool                       `yaml:"ahead_of_time,omitempty"`
	Fused       bool                       `yaml:"fused,omitempty"`
	Members     int                        `yaml:"members,omitempty"`
	Init        diffeq.Quantity            `yaml:"init"`
	Args        map[string]diffeq.Quantity `yaml:"args,omitempty"`
	Equation    diffeq.Spec                `yaml:"equation"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:   DefaultMethod,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Init:     diffeq.Quantity{DefaultInit},
		Equation: diffeq.Spec{Name: "decay", Var: "y", Drift: []string{"dydt = -y"}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// A file that brings its own equation must not inherit fields of the
	// default one.
	var probe struct {
		Equation *diffeq.Spec `yaml:"equation"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if probe.Equation != nil {
		cfg.Equation = diffeq.Spec{}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Init = slices.Clone(c.Init)
	if c.Args != nil {
		out.Args = make(map[string]diffeq.Quantity, len(c.Args))
		for k, v := range c.Args {
			out.Args[k] = slices.Clone(v)
		}
	}
	out.Equation.Args = slices.Clone(c.Equation.Args)
	out.Equation.Drift = slices.Clone(c.Equation.Drift)
	out.Equation.Diffusion = slices.Clone(c.Equation.Diffusion)
	out.Equation.Noise = slices.Clone(c.Equation.Noise)
	out.Equation.Returns = slices.Clone(c.Equation.Returns)
	return &out
}

// Scheme resolves the method name and beta.
func (c *Config) Scheme() (integrators.Scheme, error) {
	kind, err := integrators.ParseKind(c.Method)
	if err != nil {
		return integrators.Scheme{}, err
	}
	return integrators.Scheme{Kind: kind, Beta: c.Beta}, nil
}

func (c *Config) Options() integrators.Options {
	return integrators.Options{Dt: c.Dt, AheadOfTime: c.AheadOfTime, Fused: c.Fused}
}

// Build validates the configuration and returns the equation, the bound
// integrator and the ordered step arguments.
func (c *Config) Build() (*diffeq.Equation, *integrators.Integrator, []dynamo.Value, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, nil, err
	}
	eq, err := diffeq.New(c.Equation)
	if err != nil {
		return nil, nil, nil, err
	}
	scheme, err := c.Scheme()
	if err != nil {
		return nil, nil, nil, err
	}
	in, err := scheme.Build(eq, c.Options())
	if err != nil {
		return nil, nil, nil, err
	}
	args, err := c.ArgValues(eq)
	if err != nil {
		return nil, nil, nil, err
	}
	return eq, in, args, nil
}

// ArgValues orders the configured arguments as eq declares them.
func (c *Config) ArgValues(eq *diffeq.Equation) ([]dynamo.Value, error) {
	names := eq.FuncArgs()
	out := make([]dynamo.Value, len(names))
	for i, name := range names {
		q, ok := c.Args[name]
		if !ok || len(q) == 0 {
			return nil, fmt.Errorf("%w: argument %q of %s has no value", ErrInvalid, name, eq.FuncName())
		}
		out[i] = q.Value()
	}
	return out, nil
}

// InitValue returns the initial state.
func (c *Config) InitValue() dynamo.Value {
	return c.Init.Value()
}

// Validate checks the run parameters. Equation errors are reported by
// diffeq.New and scheme errors by the integrator constructor.
func (c *Config) Validate() error {
	if _, err := integrators.ParseKind(c.Method); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch {
	case !(c.Dt > 0):
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	case !(c.Duration > 0):
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	case c.Duration < c.Dt:
		return fmt.Errorf("%w: duration %g is shorter than one step", ErrInvalid, c.Duration)
	case len(c.Init) == 0:
		return fmt.Errorf("%w: init is empty", ErrInvalid)
	case c.Members < 0:
		return fmt.Errorf("%w: members must not be negative", ErrInvalid)
	}
	for name := range c.Args {
		if !slices.Contains(c.Equation.Args, name) {
			return fmt.Errorf("%w: argument %q is not declared by the equation", ErrInvalid, name)
		}
	}
	return nil
}
