package main

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynint/internal/analysis"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/integrators"
	"github.com/san-kum/dynint/internal/sim"
)

const referenceRefinement = 16

func (a *app) convergeCmd() *cobra.Command {
	var levels int
	cmd := &cobra.Command{
		Use:   "converge [preset]",
		Short: "estimate the order of a scheme from repeated step halving",
		Long: `Integrate the configured equation over its duration with dt, dt/2, ...
and compare each final state with an rk4 reference computed at a step
sixteen times smaller than the finest one. The order is the least squares
slope of log(error) against log(dt). Deterministic equations only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			eq, _, stepArgs, err := cfg.Build()
			if err != nil {
				return err
			}
			if eq.IsStochastic() {
				return errors.New("converge: strong errors of stochastic equations need a shared Brownian path")
			}
			if levels < 2 {
				return fmt.Errorf("converge: need at least 2 levels, got %d", levels)
			}
			scheme, err := cfg.Scheme()
			if err != nil {
				return err
			}

			dts := analysis.Halvings(cfg.Dt, levels)
			ref, err := integrators.MustGet("rk4")(eq, integrators.Options{Dt: dts[len(dts)-1] / referenceRefinement})
			if err != nil {
				return err
			}
			refRun, err := sim.New(ref).Run(cmd.Context(), cfg.InitValue(), sim.Config{Duration: cfg.Duration, Args: stepArgs})
			if err != nil {
				return err
			}
			exact := refRun.Final()

			build := func(dt float64) (sim.Stepper, error) {
				opts := cfg.Options()
				opts.Dt = dt
				in, err := scheme.Build(eq, opts)
				if err != nil {
					return nil, err
				}
				return in, nil
			}
			errs, err := analysis.StepErrors(build, cfg.InitValue(), stepArgs, cfg.Duration, dts, func(float64) dynamo.Value { return exact })
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DT\tERROR\tRATIO")
			for i, dt := range dts {
				ratio := "-"
				if i > 0 && errs[i] > 0 {
					ratio = fmt.Sprintf("%.3g", errs[i-1]/errs[i])
				}
				fmt.Fprintf(w, "%g\t%.3e\t%s\n", dt, errs[i], ratio)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			order, err := analysis.ConvergenceOrder(dts, errs)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s observed order: %.2f\n", scheme, order)
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().IntVar(&levels, "levels", 5, "number of step sizes")
	return cmd
}

func (a *app) lyapunovCmd() *cobra.Command {
	var perturbation float64
	cmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := a.newExperiment(cmd, args)
			if err != nil {
				return err
			}
			cfg := exp.Config()
			lambda, err := analysis.LyapunovExponent(exp.Integrator(), cfg.InitValue(), exp.Args(), cfg.Duration, perturbation, cfg.Seed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s with %s: lambda = %.6g\n", exp.Equation().FuncName(), exp.Integrator().Name(), lambda)
			switch {
			case math.IsNaN(lambda):
				fmt.Fprintln(out, "trajectory left the finite range")
			case lambda > 0:
				fmt.Fprintln(out, "nearby trajectories diverge")
			default:
				fmt.Fprintln(out, "nearby trajectories converge")
			}
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation along x0")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		param     string
		from, to  float64
		n         int
		component int
		transient float64
		record    float64
		width     int
		height    int
	)
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "bifurcation diagram over one scalar argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := a.newExperiment(cmd, args)
			if err != nil {
				return err
			}
			idx := slices.Index(exp.Equation().FuncArgs(), param)
			if idx < 0 {
				return fmt.Errorf("sweep: %s has no argument %q (have %v)", exp.Equation().FuncName(), param, exp.Equation().FuncArgs())
			}
			if n < 2 || !(to > from) {
				return fmt.Errorf("sweep: need n >= 2 and to > from")
			}

			params := make([]float64, n)
			for i := range params {
				params[i] = from + (to-from)*float64(i)/float64(n-1)
			}
			data, err := analysis.ArgSweep(exp.Integrator(), exp.Args(), idx, params, component, exp.Config().InitValue(), transient, record)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: x%d over %s in [%g, %g]\n\n", exp.Equation().FuncName(), component, param, from, to)
			fmt.Fprint(out, analysis.BifurcationToASCII(data, width, height))
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().StringVar(&param, "param", "", "argument to sweep")
	cmd.Flags().Float64Var(&from, "from", 0, "first value")
	cmd.Flags().Float64Var(&to, "to", 1, "last value")
	cmd.Flags().IntVar(&n, "n", 60, "number of values")
	cmd.Flags().IntVar(&component, "component", 0, "recorded state component")
	cmd.Flags().Float64Var(&transient, "transient", 50, "time discarded before recording")
	cmd.Flags().Float64Var(&record, "record", 20, "time recorded per value")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 24, "plot height")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}
