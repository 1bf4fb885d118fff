package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dynint/internal/config"
	"github.com/san-kum/dynint/internal/integrators"
	"github.com/san-kum/dynint/internal/metrics"
	"github.com/san-kum/dynint/internal/sim"
)

// MethodInfo describes a scheme for listings.
type MethodInfo struct {
	Name        string
	Order       string
	Stochastic  bool
	Description string
}

var methodInfo = map[integrators.Kind]MethodInfo{
	integrators.Euler:            {Order: "1 (strong 0.5)", Stochastic: true, Description: "explicit Euler / Euler-Maruyama"},
	integrators.Heun:             {Order: "2", Stochastic: true, Description: "predictor-corrector; averages drift and diffusion"},
	integrators.Midpoint:         {Order: "2", Description: "RK2 with beta 1/2"},
	integrators.RK2:              {Order: "2", Description: "parametric RK2, default beta 2/3 (Ralston)"},
	integrators.RK3:              {Order: "3", Description: "Kutta's third-order method"},
	integrators.RK4:              {Order: "4", Description: "classical Runge-Kutta"},
	integrators.RK4Alternative:   {Order: "4", Description: "Runge-Kutta 3/8 rule"},
	integrators.ExponentialEuler: {Order: "1", Stochastic: true, Description: "exact on the linear part; needs fused mode and a returned coefficient"},
	integrators.MilsteinIto:      {Order: "strong 1", Stochastic: true, Description: "derivative-free Milstein, Ito"},
	integrators.MilsteinStra:     {Order: "strong 1", Stochastic: true, Description: "derivative-free Milstein, Stratonovich"},
}

type Registry struct {
	configs map[string]func() *config.Config
}

func NewRegistry() *Registry {
	r := &Registry{configs: make(map[string]func() *config.Config)}
	for _, name := range config.ListPresets() {
		r.configs[name] = func() *config.Config { return config.GetPreset(name) }
	}
	return r
}

// Register adds or replaces a named configuration.
func (r *Registry) Register(name string, cfg *config.Config) {
	r.configs[name] = cfg.Clone
}

func (r *Registry) GetConfig(name string) (*config.Config, error) {
	fn, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("unknown equation: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListConfigs() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Methods describes every scheme in registry order.
func Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(methodInfo))
	for _, k := range integrators.Kinds() {
		info := methodInfo[k]
		info.Name = k.String()
		out = append(out, info)
	}
	return out
}

// DefaultMetrics observes the first component and flags blow-ups.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewMoments(0),
		metrics.NewStability(1e6),
		metrics.NewFinite(),
		metrics.NewPathLength(),
	}
}
