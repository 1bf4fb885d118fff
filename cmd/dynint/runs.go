package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dynint/internal/analysis"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
	"github.com/san-kum/dynint/internal/storage"
	"github.com/san-kum/dynint/internal/viz"
)

const maxPlots = 6

// loadRun reads a stored run back into a result. Auxiliary outputs are not
// restored.
func (a *app) loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(a.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(states) == 0 || len(states[0]) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	result := &sim.Result{
		Method:     meta.Method,
		Times:      times,
		States:     make([]dynamo.Value, len(states)),
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	for i, s := range states {
		result.States[i] = dynamo.FromFloat64s(s)
	}
	return meta, result, nil
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := storage.New(a.dataDir).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEQUATION\tTIME\tDURATION\tDT\tMETHOD\tSTEPS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%d\n",
					run.ID,
					run.Equation,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Dt,
					run.Method,
					run.Steps,
				)
			}
			return w.Flush()
		},
	}
}

func (a *app) plotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the state components of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\nequation: %s (%s)\nsamples: %d\n\n", meta.ID, meta.Equation, meta.Method, len(result.States))

			n := min(result.States[0].Len(), maxPlots)
			for i := 0; i < n; i++ {
				graph := asciigraph.Plot(result.Column(i),
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("x%d vs time", i)),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func (a *app) phaseCmd() *cobra.Command {
	var (
		xAxis, yAxis int
		svgPath      string
	)
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of two components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			portrait := analysis.NewPhasePortrait(result, xAxis, yAxis)
			if portrait == nil {
				return fmt.Errorf("state dimension %d too small for axes %d, %d", result.States[0].Len(), xAxis, yAxis)
			}

			if svgPath != "" {
				f, err := os.Create(svgPath)
				if err != nil {
					return err
				}
				defer f.Close()
				return viz.WriteTrajectorySVG(f, portrait.Points, 800, 600, "#00ccff")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "phase space plot: %s\nx-axis: x%d, y-axis: x%d\n\n", meta.ID, xAxis, yAxis)
			fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait, 70, 20))
			return nil
		},
	}
	cmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	cmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the trajectory as SVG to this file")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(a.dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func (a *app) exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print the states of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			return storage.WriteCSV(cmd.OutOrStdout(), result)
		},
	}
}

func (a *app) exportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a run with its states as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(cmd.OutOrStdout(), meta.Equation, meta.Dt, meta.Duration, result)
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var component int
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of one component of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, result, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			if component < 0 || component >= result.States[0].Len() {
				return fmt.Errorf("component %d out of range", component)
			}
			data := result.Column(component)
			if len(data) < 16 {
				return fmt.Errorf("run %s is too short for a spectrum", meta.ID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frequency analysis: %s\nequation: %s\n\n", meta.ID, meta.Equation)
			ps := analysis.PowerSpectrum(data)
			graph := asciigraph.Plot(ps[1:max(len(ps)/2, 2)],
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("power spectrum (x%d)", component)),
			)
			fmt.Fprintln(out, graph)
			fmt.Fprintln(out)

			freq := analysis.DominantFrequency(data, meta.Dt)
			fmt.Fprintf(out, "dominant frequency: %.4g hz\n", freq)
			if freq > 0 {
				fmt.Fprintf(out, "period: %.4g s\n", 1/freq)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&component, "component", 0, "state component")
	return cmd
}
