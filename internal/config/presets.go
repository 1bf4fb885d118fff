package config

import (
	"sort"

	"github.com/san-kum/dynint/internal/diffeq"
)

var Presets = map[string]*Config{
	"decay": {
		Method: "euler", Dt: 0.1, Duration: 5,
		Init:     diffeq.Quantity{1},
		Equation: diffeq.Spec{Name: "decay", Var: "y", Drift: []string{"dydt = -y"}},
	},
	"logistic": {
		Method: "rk4", Dt: 0.05, Duration: 20,
		Init: diffeq.Quantity{0.05},
		Args: map[string]diffeq.Quantity{"r": {0.8}, "K": {1}},
		Equation: diffeq.Spec{
			Name:  "logistic",
			Var:   "N",
			Args:  []string{"r", "K"},
			Drift: []string{"dNdt = r * N * (1 - N/K)"},
		},
	},
	"ou": {
		Method: "euler", Dt: 0.01, Duration: 10, Seed: 1,
		Init: diffeq.Quantity{1},
		Args: map[string]diffeq.Quantity{"theta": {1}, "mu": {0}},
		Equation: diffeq.Spec{
			Name:  "ou",
			Var:   "x",
			Args:  []string{"theta", "mu"},
			Drift: []string{"dxdt = theta * (mu - x)"},
			Noise: diffeq.Quantity{0.3},
		},
	},
	"gbm": {
		Method: "milstein", Dt: 0.001, Duration: 1, Seed: 1,
		Init: diffeq.Quantity{100},
		Args: map[string]diffeq.Quantity{"mu": {0.05}, "sigma": {0.2}},
		Equation: diffeq.Spec{
			Name:      "gbm",
			Var:       "S",
			Args:      []string{"mu", "sigma"},
			Drift:     []string{"dSdt = mu * S"},
			Diffusion: []string{"g = sigma * S"},
		},
	},
	"lif": {
		Method: "exponential", Dt: 0.1, Duration: 100, Fused: true,
		Init: diffeq.Quantity{-65},
		Args: map[string]diffeq.Quantity{"I": {20}, "tau": {10}, "V_rest": {-65}, "R": {1}},
		Equation: diffeq.Spec{
			Name:    "lif",
			Var:     "V",
			Args:    []string{"I", "tau", "V_rest", "R"},
			Drift:   []string{"lam = -1 / tau", "dVdt = (-(V - V_rest) + R*I) / tau"},
			Returns: []string{"lam"},
		},
	},
	"cubic": {
		Method: "milstein_stra", Dt: 0.001, Duration: 5, Seed: 1,
		Init: diffeq.Quantity{1},
		Args: map[string]diffeq.Quantity{"sigma": {0.5}},
		Equation: diffeq.Spec{
			Name:      "cubic",
			Var:       "x",
			Args:      []string{"sigma"},
			Drift:     []string{"dxdt = -x*x*x"},
			Diffusion: []string{"g = sigma * x"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
