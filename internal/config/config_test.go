package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Method != "rk4" {
		t.Errorf("expected method rk4, got %s", cfg.Method)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if _, _, _, err := cfg.Build(); err != nil {
		t.Errorf("default config does not build: %v", err)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			eq, in, args, err := cfg.Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(args) != len(eq.FuncArgs()) {
				t.Errorf("got %d args for %d parameters", len(args), len(eq.FuncArgs()))
			}
			if in.Equation() != eq {
				t.Error("integrator bound to another equation")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lif")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Method != "exponential" || !cfg.Fused {
		t.Errorf("lif preset = %+v", cfg)
	}

	cfg.Args["I"][0] = 0
	cfg.Equation.Drift[0] = "lam = 0"
	again := GetPreset("lif")
	if again.Args["I"][0] != 20 || again.Equation.Drift[0] != "lam = -1 / tau" {
		t.Error("GetPreset should return an independent copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"cubic", "decay", "gbm", "lif", "logistic", "ou"}
	if got := ListPresets(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListPresets() = %v, want %v", got, want)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("gbm")
	cfg.Init = []float64{100, 50}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", cfg, loaded)
	}
}

func TestLoadScalarForms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `method: Milstein
dt: 0.01
duration: 1
init: 2
args:
  sigma: [0.1, 0.2]
equation:
  var: x
  args: [sigma]
  drift: [dxdt = -x]
  diffusion: [g = sigma * x]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	_, in, args, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	if eq := in.Equation(); eq.FuncName() != "x" {
		t.Errorf("equation name = %q, want the variable name", eq.FuncName())
	}
	if in.Scheme().Kind != integrators.MilsteinIto {
		t.Errorf("scheme = %v", in.Scheme())
	}
	if !dynamo.Equal(cfg.InitValue(), dynamo.Scalar(2)) {
		t.Errorf("init = %v", cfg.InitValue())
	}
	if !dynamo.Equal(args[0], dynamo.Array{0.1, 0.2}) {
		t.Errorf("sigma = %v", args[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Method = "leapfrog" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"duration below dt", func(c *Config) { c.Duration = 0.001 }},
		{"empty init", func(c *Config) { c.Init = nil }},
		{"negative members", func(c *Config) { c.Members = -1 }},
		{"undeclared arg", func(c *Config) { c.Args["omega"] = []float64{1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("ou")
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := GetPreset("ou").Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestMissingArg(t *testing.T) {
	cfg := GetPreset("ou")
	delete(cfg.Args, "mu")
	if _, _, _, err := cfg.Build(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSchemeCapability(t *testing.T) {
	cfg := GetPreset("ou")
	cfg.Method = "rk4"
	if _, _, _, err := cfg.Build(); !errors.Is(err, integrators.ErrCapability) {
		t.Errorf("expected ErrCapability, got %v", err)
	}
}
