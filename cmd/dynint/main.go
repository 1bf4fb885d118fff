package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynint/internal/config"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/experiment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	dataDir    string
	configFile string
	verbose    bool
	flags      runFlags
	registry   *experiment.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{registry: experiment.NewRegistry()}

	root := &cobra.Command{
		Use:          "dynint",
		Short:        "fixed-step ODE/SDE integrators with closure and generated-code backends",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), a.verbose)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "data", ".dynint", "data directory")
	pf.StringVarP(&a.configFile, "config", "c", "", "config file path (yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.runCmd(),
		a.codegenCmd(),
		a.methodsCmd(),
		a.presetsCmd(),
		a.listCmd(),
		a.plotCmd(),
		a.phaseCmd(),
		a.exportCmd(),
		a.exportCSVCmd(),
		a.exportJSONCmd(),
		a.analyzeCmd(),
		a.lyapunovCmd(),
		a.sweepCmd(),
		a.convergeCmd(),
		a.compareCmd(),
		a.benchCmd(),
		a.liveCmd(),
		a.scenarioCmd(),
		a.monteCarloCmd(),
		a.searchCmd(),
	)
	return root
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// runFlags override config values. Only flags set on the command line are
// applied.
type runFlags struct {
	method      string
	beta        float64
	dt          float64
	duration    float64
	seed        int64
	aheadOfTime bool
	fused       bool
	members     int
	init        []float64
	args        []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.method, "method", "m", config.DefaultMethod, "integration scheme")
	fs.Float64Var(&f.beta, "beta", 0, "rk2 beta (0 selects 2/3)")
	fs.Float64Var(&f.dt, "dt", config.DefaultDt, "timestep")
	fs.Float64VarP(&f.duration, "time", "t", config.DefaultDuration, "duration")
	fs.Int64Var(&f.seed, "seed", 0, "random seed")
	fs.BoolVar(&f.aheadOfTime, "aot", false, "generate the code unit")
	fs.BoolVar(&f.fused, "fused", false, "fused mode (implies --aot)")
	fs.IntVar(&f.members, "members", 0, "ensemble members")
	fs.Float64SliceVar(&f.init, "init", nil, "initial state")
	fs.StringArrayVar(&f.args, "arg", nil, "step argument as name=value or name=[v1,v2]")
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("method") {
		cfg.Method = f.method
	}
	if fs.Changed("beta") {
		cfg.Beta = f.beta
	}
	if fs.Changed("dt") {
		cfg.Dt = f.dt
	}
	if fs.Changed("time") {
		cfg.Duration = f.duration
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("aot") {
		cfg.AheadOfTime = f.aheadOfTime
	}
	if fs.Changed("fused") {
		cfg.Fused = f.fused
	}
	if cfg.Fused {
		cfg.AheadOfTime = true
	}
	if fs.Changed("members") {
		cfg.Members = f.members
	}
	if fs.Changed("init") {
		cfg.Init = diffeq.Quantity(f.init)
	}
	for _, kv := range f.args {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--arg %q: want name=value", kv)
		}
		var q diffeq.Quantity
		if err := yaml.Unmarshal([]byte(value), &q); err != nil {
			return fmt.Errorf("--arg %s: %w", name, err)
		}
		if cfg.Args == nil {
			cfg.Args = make(map[string]diffeq.Quantity)
		}
		cfg.Args[strings.TrimSpace(name)] = q
	}
	return nil
}

// loadConfig resolves --config, else the named preset, else the default
// equation, and applies the command line flags on top.
func (a *app) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case a.configFile != "":
		c, err := config.Load(a.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		c, err := a.registry.GetConfig(args[0])
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		cfg = config.DefaultConfig()
	}
	if err := a.flags.apply(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) newExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, error) {
	cfg, err := a.loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg)
}
