package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mcpsolve/internal/config"
	"mcpsolve/internal/encoding"
	"mcpsolve/internal/experiment"
	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
)

func newBatchCmd(g *globals) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every instance against every backend and symmetry setting",
		Example: "  mcpsolve batch --instances-dir instances --output-dir res\n" +
			"  mcpsolve batch --backends pb,sat --symbreak true --only 1,2,3 --parallel 2",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var flagErr error
			cfg, err := g.load(cmd, func(c *config.Config) {
				if f.Changed("instances-dir") {
					c.InstancesDir, _ = f.GetString("instances-dir")
				}
				if f.Changed("output-dir") {
					c.OutputDir, _ = f.GetString("output-dir")
				}
				if f.Changed("backends") {
					v, _ := f.GetString("backends")
					c.Backends = splitCSV(v)
				}
				if f.Changed("symbreak") {
					v, _ := f.GetString("symbreak")
					c.SymmetryBreak, flagErr = parseBools(v)
				}
				if f.Changed("symmetry-mode") {
					c.SymmetryMode, _ = f.GetString("symmetry-mode")
				}
				if f.Changed("strategy") {
					c.Strategy, _ = f.GetString("strategy")
				}
				if f.Changed("time-budget") {
					c.TimeBudgetSeconds, _ = f.GetInt("time-budget")
				}
				if f.Changed("parallel") {
					c.Parallel, _ = f.GetInt("parallel")
				}
			})
			if err != nil {
				return err
			}
			if flagErr != nil {
				return flagErr
			}
			entries, err := instance.LoadDir(cfg.InstancesDir)
			if err != nil {
				return err
			}
			if only != "" {
				entries, err = selectInstances(entries, splitCSV(only))
				if err != nil {
					return err
				}
			}
			if len(entries) == 0 {
				return fmt.Errorf("no instances found in %s", cfg.InstancesDir)
			}
			mode, err := encoding.ParseSymmetryMode(cfg.SymmetryMode)
			if err != nil {
				return err
			}
			strategy, err := solver.ParseStrategy(cfg.Strategy)
			if err != nil {
				return err
			}
			// every parallel instance needs its own admission slot
			if cfg.MaxConcurrent < cfg.Parallel {
				cfg.MaxConcurrent = cfg.Parallel
			}
			if cfg.MaxQueueDepth < cfg.Parallel {
				cfg.MaxQueueDepth = cfg.Parallel
			}
			s, err := newSolver(cfg, g.log, nil)
			if err != nil {
				return err
			}
			sum, err := experiment.New(s, experiment.Config{
				Instances:     entries,
				OutputDir:     cfg.OutputDir,
				Backends:      cfg.Backends,
				SymmetryBreak: cfg.SymmetryBreak,
				SymmetryMode:  mode,
				Strategy:      strategy,
				TimeBudget:    cfg.TimeBudget(),
				Parallel:      cfg.Parallel,
				Logger:        &g.log,
			}).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d instances, %d solves in %ss\n",
				sum.RunID, sum.Instances, sum.Solves, durationSeconds(sum.Elapsed))
			for _, st := range []string{"optimal", "feasible", "infeasible", "unknown"} {
				if n := sum.ByStatus[st]; n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %d\n", st, n)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("instances-dir", config.DefaultInstancesDir, "Directory holding *.dat instance files")
	cmd.Flags().String("output-dir", config.DefaultOutputDir, "Directory for <instance>.json result files")
	cmd.Flags().String("backends", strings.Join(config.DefaultBackends, ","), "Comma-separated backends")
	cmd.Flags().String("symbreak", "false,true", "Comma-separated symmetry settings to run")
	cmd.Flags().String("symmetry-mode", "load", "Symmetry breaking mode: load|lex")
	cmd.Flags().String("strategy", "auto", "Optimization strategy: auto|native|bisect")
	cmd.Flags().Int("time-budget", config.DefaultTimeBudgetSeconds, "Wall-clock budget per solve in seconds")
	cmd.Flags().Int("parallel", config.DefaultParallel, "Instances solved concurrently")
	cmd.Flags().StringVar(&only, "only", "", "Comma-separated instance numbers or names to run")
	return cmd
}

func parseBools(s string) ([]bool, error) {
	var out []bool
	for _, p := range splitCSV(s) {
		b, err := strconv.ParseBool(p)
		if err != nil {
			return nil, fmt.Errorf("symbreak: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// selectInstances keeps entries named by number (7 → inst07) or by stem.
func selectInstances(entries []instance.Entry, want []string) ([]instance.Entry, error) {
	byName := make(map[string]instance.Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	out := make([]instance.Entry, 0, len(want))
	for _, w := range want {
		name := w
		if k, err := strconv.Atoi(w); err == nil {
			name = strings.TrimSuffix(instance.FileForNumber(k), ".dat")
		}
		e, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("instance %s not found", w)
		}
		out = append(out, e)
	}
	return out, nil
}
