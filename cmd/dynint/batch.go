package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynint/internal/automation"
	"github.com/san-kum/dynint/internal/optim"
	"github.com/san-kum/dynint/internal/storage"
)

func (a *app) scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file>",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			store := storage.New(a.dataDir)
			if err := store.Init(); err != nil {
				return err
			}
			results, err := automation.RunScenario(cmd.Context(), sc, a.registry, store)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tMETHOD\tSTEPS\tFINAL\tRUN")
			for _, r := range results {
				id := r.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\n", r.Name, r.Result.Method, r.Result.StepsTaken, r.Result.Final(), id)
			}
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
}

func (a *app) monteCarloCmd() *cobra.Command {
	var (
		trials       int
		perturbation float64
		threshold    float64
	)
	cmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "rerun with perturbed initial states and count stable trials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
				Base:         cfg,
				Perturbation: perturbation,
				NumTrials:    trials,
				Threshold:    threshold,
				Seed:         cfg.Seed,
			})
			if err != nil {
				return err
			}
			stable, unstable := automation.MonteCarloStats(results)
			fmt.Fprintf(cmd.OutOrStdout(), "%d trials: %d stable, %d unstable\n", len(results), stable, unstable)
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "largest change of each initial component")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "bound on the final components (0 selects 1e6)")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var (
		grid   []string
		metric string
	)
	cmd := &cobra.Command{
		Use:     "search [preset]",
		Short:   "grid search over scalar arguments minimizing a metric",
		Example: `  dynint search logistic --grid r=0.2:1.5:14 --metric mean_x0`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			best, score, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), cfg, metric, a.registry.DefaultMetrics)
			if err != nil {
				return err
			}
			parts := make([]string, len(names))
			for i, name := range names {
				parts[i] = fmt.Sprintf("%s=%g", name, best[name])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "best %s = %g at %s\n", metric, score, strings.Join(parts, " "))
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "argument range as name=lo:hi:n")
	cmd.Flags().StringVar(&metric, "metric", "path_length", "metric to minimize")
	_ = cmd.MarkFlagRequired("grid")
	return cmd
}

// parseGrid reads name=lo:hi:n ranges. Names keep their first position.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	var names []string
	var ranges [][]float64
	for _, s := range specs {
		name, rng, ok := strings.Cut(s, "=")
		fields := strings.Split(rng, ":")
		if !ok || len(fields) != 3 {
			return nil, nil, fmt.Errorf("--grid %q: want name=lo:hi:n", s)
		}
		lo, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("--grid %s: %w", name, err)
		}
		hi, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("--grid %s: %w", name, err)
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("--grid %s: bad point count %q", name, fields[2])
		}
		if slices.Contains(names, name) {
			return nil, nil, fmt.Errorf("--grid %s: given twice", name)
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	return names, ranges, nil
}
