package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mcpsolve/internal/config"
	"mcpsolve/internal/encoding"
	"mcpsolve/internal/experiment"
	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
	"mcpsolve/pkg/types"
)

func newSolveCmd(g *globals) *cobra.Command {
	var (
		backend   string
		symbreak  bool
		budget    int
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "solve <file|number>",
		Short: "Solve one instance on one backend and print the result as JSON",
		Example: "  mcpsolve solve instances/inst01.dat --backend pb\n" +
			"  mcpsolve solve 7 --backend sat --symbreak --time-budget 60",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			cfg, err := g.load(cmd, func(c *config.Config) {
				if f.Changed("time-budget") {
					c.TimeBudgetSeconds = budget
				}
				if f.Changed("output-dir") {
					c.OutputDir = outputDir
				}
				if f.Changed("symmetry-mode") {
					c.SymmetryMode, _ = f.GetString("symmetry-mode")
				}
				if f.Changed("strategy") {
					c.Strategy, _ = f.GetString("strategy")
				}
			})
			if err != nil {
				return err
			}
			path := args[0]
			if k, err := strconv.Atoi(path); err == nil {
				path = filepath.Join(cfg.InstancesDir, instance.FileForNumber(k))
			}
			in, err := instance.ParseFile(path)
			if err != nil {
				return err
			}
			mode, err := encoding.ParseSymmetryMode(cfg.SymmetryMode)
			if err != nil {
				return err
			}
			strategy, err := solver.ParseStrategy(cfg.Strategy)
			if err != nil {
				return err
			}
			if backend == "" {
				backend = cfg.Backends[0]
			}
			s, err := newSolver(cfg, g.log, nil)
			if err != nil {
				return err
			}
			sol, err := s.Solve(cmd.Context(), in, solver.SolveOptions{
				Backend:       backend,
				SymmetryBreak: symbreak,
				SymmetryMode:  mode,
				Strategy:      strategy,
				TimeBudget:    cfg.TimeBudget(),
			})
			if err != nil {
				return err
			}
			res := sol.Result()
			if f.Changed("output-dir") {
				out := experiment.ResultPath(cfg.OutputDir, in.Name)
				if err := experiment.MergeResults(out, map[string]types.Result{experiment.ResultKey(backend, symbreak): res}); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				g.log.Info().Str("path", out).Msg("result written")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(types.SolveResponse{
				ID:          in.Name,
				Backend:     sol.Backend,
				Status:      sol.Status.String(),
				Result:      res,
				Distances:   sol.Distances,
				EngineCalls: sol.Probes,
				ElapsedMS:   sol.Elapsed.Milliseconds(),
				Diagnostics: sol.Diagnostics,
			})
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "Backend: sat|pb|cp (defaults to the first configured backend)")
	cmd.Flags().BoolVar(&symbreak, "symbreak", false, "Break symmetry between equal-capacity couriers")
	cmd.Flags().String("symmetry-mode", "load", "Symmetry breaking mode: load|lex")
	cmd.Flags().String("strategy", "auto", "Optimization strategy: auto|native|bisect")
	cmd.Flags().IntVar(&budget, "time-budget", config.DefaultTimeBudgetSeconds, "Wall-clock budget in seconds")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Also merge the result into <dir>/<instance>.json")
	return cmd
}

// durationSeconds renders a duration for log fields and tables.
func durationSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64)
}
