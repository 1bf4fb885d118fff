package main

import (
	"fmt"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynint/internal/experiment"
	"github.com/san-kum/dynint/internal/sim"
	"github.com/san-kum/dynint/internal/storage"
	"github.com/san-kum/dynint/internal/viz"
)

func (a *app) runCmd() *cobra.Command {
	var (
		code     bool
		progress bool
		noSave   bool
		fps      int
	)
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "integrate a preset or config file and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if code {
				cfg.AheadOfTime = true
			}
			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}
			if cfg.Members > 0 {
				return a.runEnsemble(cmd, exp)
			}

			out := cmd.OutOrStdout()
			exp.Setup(a.registry.DefaultMetrics())
			if progress {
				p := viz.NewPrinter(cmd.ErrOrStderr(), exp.Equation().FuncName(), cfg.Duration, fps)
				exp.Simulator().AddObserver(p)
				p.Start()
				defer p.Stop()
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context(), code)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(out, "%s with %s: %d steps in %v\n", exp.Equation().FuncName(), result.Method, result.StepsTaken, elapsed)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "stopped at %v\n", e)
			}
			fmt.Fprintf(out, "final: %v\n", result.Final())
			printMetrics(cmd, result.Metrics)

			if noSave {
				return nil
			}
			st := storage.New(a.dataDir)
			if err := st.Init(); err != nil {
				return err
			}
			runID, err := st.Save(exp.Metadata(), result)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "run id: %s\n", runID)
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().BoolVar(&code, "code", false, "step through the generated unit (implies --aot)")
	cmd.Flags().BoolVar(&progress, "progress", false, "draw progress on stderr")
	cmd.Flags().IntVar(&fps, "fps", 10, "progress redraws per second")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func (a *app) runEnsemble(cmd *cobra.Command, exp *experiment.Experiment) error {
	start := time.Now()
	results, err := exp.RunEnsemble(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s with %s: %d members in %v\n",
		exp.Equation().FuncName(), exp.Integrator().Name(), len(results), time.Since(start))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tMEAN\tVARIANCE")
	for i := 0; i < results[0].Final().Len(); i++ {
		mean, variance := sim.FinalMoments(results, i)
		fmt.Fprintf(w, "x%d\t%.6g\t%.6g\n", i, mean, variance)
	}
	return w.Flush()
}

func printMetrics(cmd *cobra.Command, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, metrics[name])
	}
}

func (a *app) compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [preset] [method...]",
		Short: "run one equation with several schemes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tFINAL_X0\tPATH_LENGTH\tTIME_MS")
			for _, method := range args[1:] {
				cfg, err := a.loadConfig(cmd, args[:1])
				if err != nil {
					return err
				}
				cfg.Method = method
				exp, err := experiment.New(cfg)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\t\t\n", method, err)
					continue
				}
				exp.Setup(a.registry.DefaultMetrics())

				start := time.Now()
				result, err := exp.Run(cmd.Context(), false)
				elapsed := time.Since(start)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\t\t\n", method, err)
					continue
				}
				fmt.Fprintf(w, "%s\t%.6g\t%.4g\t%.2f\n",
					result.Method, result.Final().At(0), result.Metrics["path_length"], float64(elapsed.Microseconds())/1000)
			}
			return w.Flush()
		},
	}
	a.flags.register(cmd)
	return cmd
}

func (a *app) benchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure steps per second of the closure and generated-code paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DT\tPATH\tSTEPS\tTIME\tSTEPS/SEC")
			for _, dt := range []float64{0.01, 0.001} {
				for _, code := range []bool{false, true} {
					cfg, err := a.loadConfig(cmd, args)
					if err != nil {
						return err
					}
					cfg.Dt, cfg.AheadOfTime = dt, true
					exp, err := experiment.New(cfg)
					if err != nil {
						return err
					}

					start := time.Now()
					result, err := exp.Run(cmd.Context(), code)
					if err != nil {
						return err
					}
					elapsed := time.Since(start)

					path := "closure"
					if code {
						path = "code"
					}
					fmt.Fprintf(w, "%g\t%s\t%d\t%v\t%.0f\n",
						dt, path, result.StepsTaken, elapsed, float64(result.StepsTaken)/math.Max(elapsed.Seconds(), 1e-9))
				}
			}
			return w.Flush()
		},
	}
	a.flags.register(cmd)
	return cmd
}

func (a *app) liveCmd() *cobra.Command {
	var (
		code     bool
		perFrame int
		theme    string
	)
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "step an equation interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if code {
				cfg.AheadOfTime = true
			}
			exp, err := experiment.New(cfg)
			if err != nil {
				return err
			}
			return viz.RunLive(viz.LiveOptions{
				Title:         exp.Equation().FuncName(),
				Stepper:       exp.Integrator(),
				Init:          cfg.InitValue(),
				ArgNames:      exp.Equation().FuncArgs(),
				Args:          exp.Args(),
				Seed:          cfg.Seed,
				Code:          code,
				StepsPerFrame: perFrame,
				Theme:         theme,
			})
		},
	}
	a.flags.register(cmd)
	cmd.Flags().BoolVar(&code, "code", false, "step through the generated unit (implies --aot)")
	cmd.Flags().IntVar(&perFrame, "steps-per-frame", 1, "integrator steps per frame")
	cmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	return cmd
}
