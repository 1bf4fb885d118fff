package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynint/internal/codegen"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/experiment"
	"github.com/san-kum/dynint/internal/integrators"
)

func (a *app) codegenCmd() *cobra.Command {
	var funcName string
	cmd := &cobra.Command{
		Use:   "codegen [preset...]",
		Short: "print the generated step code; several presets are merged into one unit",
		Long: `Print the statements one step of the configured scheme executes.

With more than one preset every equation is namespaced n0, n1, ... and the
units are merged in order. --func wraps the unit in a standalone Go function
taking its inputs positionally.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := a.buildUnit(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if funcName != "" {
				fmt.Fprint(out, codegen.RenderFunc(unit, funcName))
				return nil
			}
			fmt.Fprintf(out, "// inputs: %s\n", strings.Join(unit.Inputs(), ", "))
			fmt.Fprint(out, codegen.Render(unit))
			return nil
		},
	}
	a.flags.register(cmd)
	cmd.Flags().StringVar(&funcName, "func", "", "render as a Go function with this name")
	return cmd
}

// buildUnit generates the unit of one configuration, or the merged unit of
// several presets each integrated with its own scheme.
func (a *app) buildUnit(cmd *cobra.Command, names []string) (*codegen.Unit, error) {
	if len(names) <= 1 {
		cfg, err := a.loadConfig(cmd, names)
		if err != nil {
			return nil, err
		}
		cfg.AheadOfTime = true
		_, in, _, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return in.Unit(), nil
	}

	units := make([]*codegen.Unit, 0, len(names))
	for i, name := range names {
		cfg, err := a.loadConfig(cmd, []string{name})
		if err != nil {
			return nil, err
		}
		cfg.AheadOfTime = true
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		eq, err := diffeq.New(cfg.Equation)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scheme, err := cfg.Scheme()
		if err != nil {
			return nil, err
		}
		in, err := scheme.Build(eq.RenameForMerge(fmt.Sprintf("n%d", i)), cfg.Options())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		units = append(units, in.Unit())
	}
	return codegen.Merge(units...)
}

func (a *app) methodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "list integration schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tORDER\tSDE\tDESCRIPTION")
			for _, m := range experiment.Methods() {
				sde := "no"
				if m.Stochastic {
					sde = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Order, sde, m.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			aliases := integrators.Aliases()
			names := make([]string, 0, len(aliases))
			for alias := range aliases {
				names = append(names, alias)
			}
			sort.Strings(names)
			for _, alias := range names {
				fmt.Fprintf(out, "alias %s = %s\n", alias, aliases[alias])
			}
			return nil
		},
	}
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the example equations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tDT\tDURATION\tEQUATION")
			for _, name := range a.registry.ListConfigs() {
				cfg, err := a.registry.GetConfig(name)
				if err != nil {
					return err
				}
				eq, err := diffeq.New(cfg.Equation)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%s\n", name, cfg.Method, cfg.Dt, cfg.Duration, eq)
			}
			return w.Flush()
		},
	}
}
