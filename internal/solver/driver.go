package solver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mcpsolve/internal/encoding"
	"mcpsolve/internal/instance"
	"mcpsolve/internal/route"
)

// driver runs one solve: native optimization in a single engine call, or a
// binary search over the objective bound made of feasibility probes. Every
// engine call goes through the supervisor.
type driver struct {
	log      zerolog.Logger
	pub      EventPublisher
	sup      Supervisor
	backend  Backend
	inst     *instance.Instance
	opts     SolveOptions
	strategy Strategy
	start    time.Time
	deadline time.Time
	probes   int
}

// witness is the best model found so far and the encoding it belongs to.
type witness struct {
	enc      *encoding.Encoding
	values   []bool
	reported int
}

func (d *driver) run(ctx context.Context) Solution {
	d.start = time.Now()
	d.deadline = d.start.Add(d.opts.TimeBudget)
	sol := Solution{
		Instance:      d.inst.Name,
		Backend:       d.backend.Name(),
		SymmetryBreak: d.opts.SymmetryBreak,
		Strategy:      d.strategy,
		Objective:     NoObjective,
		TimeBudget:    d.opts.TimeBudget,
	}
	d.pub.Publish(Event{Name: EventSolveStart, Instance: d.inst.Name, Fields: map[string]any{
		"backend": sol.Backend, "symmetry": d.opts.symmetry().String(), "strategy": string(d.strategy),
	}})

	switch {
	case d.inst.N == 0:
		sol.Status = StatusOptimal
		sol.Objective = 0
		sol.Routes = make([][]int, d.inst.M)
		sol.Distances = make([]int, d.inst.M)
		for c := range sol.Routes {
			sol.Routes[c] = []int{}
		}
	default:
		if bad, why := d.inst.Infeasible(); bad {
			d.log.Info().Str("reason", why).Msg("instance infeasible by construction")
			sol.Status = StatusInfeasible
			sol.Diagnostics = append(sol.Diagnostics, why)
			break
		}
		var best *witness
		if d.strategy == StrategyNative {
			best, sol.Status = d.native(ctx)
		} else {
			best, sol.Status = d.bisect(ctx)
		}
		if best != nil {
			d.finish(&sol, best)
		}
	}

	sol.Elapsed = time.Since(d.start)
	sol.Probes = d.probes
	d.log.Info().
		Str("status", sol.Status.String()).
		Int("objective", sol.Objective).
		Int("engine_calls", sol.Probes).
		Dur("elapsed", sol.Elapsed).
		Msg("solve done")
	d.pub.Publish(Event{Name: EventSolveDone, Instance: d.inst.Name, Fields: map[string]any{
		"backend": sol.Backend, "status": sol.Status.String(), "objective": sol.Objective,
	}})
	return sol
}

// call encodes and runs one engine operation on a supervised worker.
func (d *driver) call(ctx context.Context, opts encoding.Options, op func(context.Context, Session) (Outcome, error)) (*encoding.Encoding, Outcome, Verdict) {
	d.probes++
	budget := time.Until(d.deadline)
	fields := map[string]any{"backend": d.backend.Name(), "call": d.probes}
	if opts.Bounded {
		fields["bound"] = opts.Bound
	}
	d.pub.Publish(Event{Name: EventProbeStart, Instance: d.inst.Name, Fields: fields})

	var enc *encoding.Encoding
	out, verdict, err := d.sup.Run(ctx, budget, func(wctx context.Context, publish func(Interrupter)) (Outcome, error) {
		enc = encoding.Encode(d.inst, opts)
		sess, err := d.backend.Start(enc.Sys)
		if err != nil {
			return Outcome{}, err
		}
		defer sess.Close()
		publish(sess)
		return op(wctx, sess)
	})
	if err != nil {
		err = backendError{backend: d.backend.Name(), err: err}
		d.log.Error().Err(err).Int("call", d.probes).Msg("engine call failed")
		out = Outcome{Status: StatusUnknown}
	}
	if verdict == VerdictAbandoned {
		d.log.Warn().Int("call", d.probes).Dur("grace", d.sup.Grace).Msg("engine ignored interrupt; worker abandoned")
		d.pub.Publish(Event{Name: EventWorkerAbandoned, Instance: d.inst.Name, Fields: map[string]any{"backend": d.backend.Name()}})
	}
	if out.Detached {
		d.log.Warn().Str("backend", d.backend.Name()).Int("call", d.probes).Msg("engine search cannot be stopped; left running detached")
		detachedSearches.WithLabelValues(d.backend.Name()).Inc()
	}
	if out.Status != StatusUnknown && out.Values == nil && out.Status != StatusInfeasible {
		out.Status = StatusUnknown
	}
	probesTotal.WithLabelValues(d.backend.Name(), out.Status.String(), verdict.String()).Inc()
	done := map[string]any{"status": out.Status.String(), "verdict": verdict.String()}
	for k, v := range fields {
		done[k] = v
	}
	d.pub.Publish(Event{Name: EventProbeDone, Instance: d.inst.Name, Fields: done})
	if verdict == VerdictAbandoned {
		// the worker still owns enc
		return nil, out, verdict
	}
	return enc, out, verdict
}

func (d *driver) native(ctx context.Context) (*witness, Status) {
	lb, ub := Bounds(d.inst)
	opts := encoding.Options{Symmetry: d.opts.symmetry()}
	enc, out, verdict := d.call(ctx, opts, func(ctx context.Context, s Session) (Outcome, error) {
		return s.Minimize(ctx, lb, ub)
	})
	switch out.Status {
	case StatusOptimal, StatusFeasible:
		status := out.Status
		if verdict != VerdictCompleted {
			status = StatusFeasible
		}
		return &witness{enc: enc, values: out.Values, reported: out.Objective}, status
	case StatusInfeasible:
		return nil, StatusInfeasible
	default:
		return nil, StatusUnknown
	}
}

func (d *driver) bisect(ctx context.Context) (*witness, Status) {
	lb, ub := Bounds(d.inst)
	provable := true
	exhausted := false
	var best *witness
	for {
		if lb > ub {
			exhausted = true
			break
		}
		if ctx.Err() != nil || time.Until(d.deadline) <= 0 {
			break
		}
		mid := lb + (ub-lb)/2
		opts := encoding.Options{Symmetry: d.opts.symmetry(), Bounded: true, Bound: mid}
		enc, out, verdict := d.call(ctx, opts, func(ctx context.Context, s Session) (Outcome, error) {
			return s.Check(ctx)
		})
		switch out.Status {
		case StatusFeasible, StatusOptimal:
			obj := enc.ObjectiveOf(out.Values)
			best = &witness{enc: enc, values: out.Values, reported: obj}
			if obj < mid {
				mid = obj
			}
			ub = mid - 1
		case StatusInfeasible:
			lb = mid + 1
		default:
			provable = false
			lb = mid + 1
		}
		d.log.Debug().Int("bound", mid).Str("status", out.Status.String()).
			Int("lb", lb).Int("ub", ub).Msg("probe")
		if verdict == VerdictAbandoned {
			break
		}
	}
	switch {
	case best != nil && exhausted && provable:
		return best, StatusOptimal
	case best != nil:
		return best, StatusFeasible
	case exhausted && provable:
		return nil, StatusInfeasible
	default:
		return nil, StatusUnknown
	}
}

// finish rebuilds routes from the witness and lets the recomputed lengths
// decide the objective.
func (d *driver) finish(sol *Solution, w *witness) {
	routes, diags := route.Reconstruct(w.enc.Witness(w.values), d.log)
	rep := route.Verify(d.inst, routes, w.reported, d.log)
	if rep.Mismatch {
		objectiveMismatches.Inc()
	}
	sol.Routes = routes
	sol.Distances = rep.Distances
	sol.Objective = rep.Objective
	for _, dg := range diags {
		sol.Diagnostics = append(sol.Diagnostics, dg.String())
	}
	for _, dg := range rep.Diagnostics {
		sol.Diagnostics = append(sol.Diagnostics, dg.String())
	}
}
