// Package experiment runs every instance against every configured backend and
// symmetry setting, and writes one combined JSON result file per instance.
package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mcpsolve/internal/common/fsutil"
	"mcpsolve/internal/encoding"
	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
	"mcpsolve/pkg/types"
)

// Solver is the part of *solver.Solver the runner needs.
type Solver interface {
	Solve(ctx context.Context, in *instance.Instance, opts solver.SolveOptions) (solver.Solution, error)
}

// Config describes one batch run.
type Config struct {
	Instances     []instance.Entry
	OutputDir     string
	Backends      []string
	SymmetryBreak []bool
	SymmetryMode  encoding.SymmetryMode
	Strategy      solver.Strategy
	TimeBudget    time.Duration
	// Parallel bounds how many instances are in flight; runs within one
	// instance are sequential.
	Parallel  int
	Logger    *zerolog.Logger
	Publisher solver.EventPublisher
}

type nopPublisher struct{}

func (nopPublisher) Publish(solver.Event) {}

// Summary reports what a run did.
type Summary struct {
	RunID     string
	Instances int
	Solves    int
	ByStatus  map[string]int
	Files     []string
	Elapsed   time.Duration
}

// Runner executes batch runs.
type Runner struct {
	s   Solver
	cfg Config
	log zerolog.Logger
	pub solver.EventPublisher
}

// New builds a runner. Zero Parallel means one instance at a time and empty
// SymmetryBreak means both settings.
func New(s Solver, cfg Config) *Runner {
	if cfg.Parallel <= 0 {
		cfg.Parallel = 1
	}
	if len(cfg.SymmetryBreak) == 0 {
		cfg.SymmetryBreak = []bool{false, true}
	}
	r := &Runner{s: s, cfg: cfg, log: zerolog.Nop(), pub: cfg.Publisher}
	if cfg.Logger != nil {
		r.log = *cfg.Logger
	}
	if r.pub == nil {
		r.pub = nopPublisher{}
	}
	return r
}

// ResultKey names one run inside an instance's result file.
func ResultKey(backend string, symbreak bool) string {
	if symbreak {
		return backend + "_symbreak"
	}
	return backend
}

// ResultPath is where the results of an instance are written.
func ResultPath(dir, inst string) string {
	return filepath.Join(dir, inst+".json")
}

// Run parses every instance up front (any parse error aborts the run before
// a solve starts), then solves instances with bounded parallelism. Solve
// failures degrade single results; rejected options and write errors abort.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	insts, err := instance.LoadAll(r.cfg.Instances)
	if err != nil {
		return Summary{RunID: runID}, err
	}
	if len(r.cfg.Backends) == 0 {
		return Summary{RunID: runID}, errors.New("no backends configured")
	}
	log.Info().Int("instances", len(insts)).Strs("backends", r.cfg.Backends).
		Int("parallel", r.cfg.Parallel).Msg("batch start")

	sum := Summary{RunID: runID, Instances: len(insts), ByStatus: map[string]int{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	for _, in := range insts {
		in := in
		g.Go(func() error {
			results, statuses, err := r.solveInstance(gctx, log, in)
			if err != nil {
				return err
			}
			path := ResultPath(r.cfg.OutputDir, in.Name)
			if err := MergeResults(path, results); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			mu.Lock()
			sum.Solves += len(statuses)
			for _, st := range statuses {
				sum.ByStatus[st]++
			}
			sum.Files = append(sum.Files, path)
			mu.Unlock()
			r.pub.Publish(solver.Event{Name: solver.EventInstanceDone, Instance: in.Name, Fields: map[string]any{
				"run_id": runID, "path": path, "runs": len(results),
			}})
			return nil
		})
	}
	err = g.Wait()
	sum.Elapsed = time.Since(start)
	if err != nil {
		log.Error().Err(err).Msg("batch aborted")
		return sum, err
	}
	sort.Strings(sum.Files)
	log.Info().Int("solves", sum.Solves).Dur("elapsed", sum.Elapsed).Msg("batch done")
	return sum, nil
}

func (r *Runner) solveInstance(ctx context.Context, log zerolog.Logger, in *instance.Instance) (map[string]types.Result, []string, error) {
	results := make(map[string]types.Result, len(r.cfg.Backends)*len(r.cfg.SymmetryBreak))
	var statuses []string
	for _, b := range r.cfg.Backends {
		for _, sb := range r.cfg.SymmetryBreak {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			sol, err := r.s.Solve(ctx, in, solver.SolveOptions{
				Backend:       b,
				SymmetryBreak: sb,
				SymmetryMode:  r.cfg.SymmetryMode,
				TimeBudget:    r.cfg.TimeBudget,
				Strategy:      r.cfg.Strategy,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("%s on %s: %w", in.Name, ResultKey(b, sb), err)
			}
			res := sol.Result()
			results[ResultKey(b, sb)] = res
			statuses = append(statuses, sol.Status.String())
			log.Info().Str("instance", in.Name).Str("run", ResultKey(b, sb)).
				Str("status", sol.Status.String()).Int("obj", res.Obj).Int("time", res.Time).
				Msg("run done")
		}
	}
	return results, statuses, nil
}

// MergeResults writes results into the JSON object at path, keeping keys
// already present that this run did not produce.
func MergeResults(path string, results map[string]types.Result) error {
	merged := map[string]json.RawMessage{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &merged); err != nil {
			return fmt.Errorf("existing results: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}
	for k, v := range results {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		merged[k] = raw
	}
	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(out, '\n'), 0o644)
}
