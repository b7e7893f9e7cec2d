package solver

import (
	"context"
	"math/bits"
	"sync"

	"github.com/crillab/gophersat/solver"

	"mcpsolve/internal/encoding"
)

// gophersatBackend compiles systems into pseudo-boolean constraints for
// gophersat, whose Optimal search handles the objective natively.
//
// gophersat never reads its stop channel, so a search cannot be cut short.
// On interrupt the session returns the last incumbent and leaves the search
// running detached; the outcome is flagged so the driver can report it.
type gophersatBackend struct{}

// NewGophersatBackend returns the "pb" backend.
func NewGophersatBackend() Backend { return gophersatBackend{} }

func (gophersatBackend) Name() string { return "pb" }

func (gophersatBackend) Description() string {
	return "pseudo-boolean CDCL (crillab/gophersat) with native cost minimization"
}

func (gophersatBackend) Capabilities() Capabilities {
	return Capabilities{NativeOptimize: true, Interruptible: false}
}

func (gophersatBackend) Start(sys *encoding.System) (Session, error) {
	s := &pbSession{
		nvars:     sys.NumVars(),
		objective: sys.Objective,
		stop:      make(chan struct{}),
	}
	for _, cl := range sys.Clauses {
		if len(cl) == 0 {
			s.unsat = true
			continue
		}
		s.constrs = append(s.constrs, solver.PropClause(intLits(cl)...))
	}
	for _, c := range sys.Linears {
		s.constrs, s.unsat = appendPB(s.constrs, c, s.unsat)
	}
	return s, nil
}

type pbSession struct {
	nvars     int
	objective [][]encoding.Term
	constrs   []solver.PBConstr
	unsat     bool
	once      sync.Once
	stop      chan struct{}
}

func intLits(cl encoding.Clause) []int {
	out := make([]int, len(cl))
	for i, l := range cl {
		out[i] = int(l)
	}
	return out
}

// appendPB appends c in gophersat's Σ w·lit >= k form.
func appendPB(dst []solver.PBConstr, c encoding.Linear, unsat bool) ([]solver.PBConstr, bool) {
	for _, pb := range encoding.Normalize(c) {
		switch {
		case pb.Tautology():
			continue
		case pb.Unsatisfiable():
			unsat = true
			continue
		}
		lits := make([]int, len(pb.Terms))
		weights := make([]int, len(pb.Terms))
		for i, t := range pb.Terms {
			lits[i] = int(t.Lit)
			weights[i] = t.Coef
		}
		dst = append(dst, solver.GtEq(lits, weights, pb.K))
	}
	return dst, unsat
}

// cloneConstrs deep-copies constrs. gophersat sorts and saturates the
// Lits and Weights it is handed, so every problem gets its own slices.
func cloneConstrs(constrs []solver.PBConstr) []solver.PBConstr {
	out := make([]solver.PBConstr, len(constrs))
	for i, c := range constrs {
		out[i] = solver.PBConstr{
			Lits:    append([]int(nil), c.Lits...),
			AtLeast: c.AtLeast,
		}
		if c.Weights != nil {
			out[i].Weights = append([]int(nil), c.Weights...)
		}
	}
	return out
}

func (s *pbSession) Interrupt() { s.once.Do(func() { close(s.stop) }) }

func (s *pbSession) Check(ctx context.Context) (Outcome, error) {
	if s.unsat {
		return Outcome{Status: StatusInfeasible}, nil
	}
	pb := solver.ParsePBConstrs(cloneConstrs(s.constrs))
	out := s.run(ctx, pb)
	if out.Status == StatusOptimal {
		// no cost function: any model is just feasible
		out.Status = StatusFeasible
	}
	return out, nil
}

// Minimize introduces binary objective bits z with Σ 2^b·z_b bounding every
// courier distance from above and lets gophersat minimize Σ 2^b·z_b.
func (s *pbSession) Minimize(ctx context.Context, lb, ub int) (Outcome, error) {
	if s.unsat || lb > ub {
		return Outcome{Status: StatusInfeasible}, nil
	}
	width := bits.Len(uint(ub))
	if width == 0 {
		width = 1
	}
	zterms := make([]encoding.Term, width)
	zvars := make([]int, width)
	costLits := make([]solver.Lit, width)
	costWeights := make([]int, width)
	for b := 0; b < width; b++ {
		z := s.nvars + 1 + b
		zterms[b] = encoding.Term{Coef: 1 << b, Lit: encoding.Lit(z)}
		zvars[b] = z
		costLits[b] = solver.IntToLit(int32(z))
		costWeights[b] = 1 << b
	}

	constrs := cloneConstrs(s.constrs)
	// registers every z variable even when all rows below are tautologies
	constrs = append(constrs, solver.PBConstr{Lits: zvars})
	unsat := false
	for _, terms := range s.objective {
		row := append([]encoding.Term(nil), terms...)
		for _, zt := range zterms {
			row = append(row, encoding.Term{Coef: -zt.Coef, Lit: zt.Lit})
		}
		constrs, unsat = appendPB(constrs, encoding.Linear{Terms: row, Op: encoding.LE, RHS: 0}, unsat)
	}
	constrs, unsat = appendPB(constrs, encoding.Linear{Terms: zterms, Op: encoding.GE, RHS: lb}, unsat)
	constrs, unsat = appendPB(constrs, encoding.Linear{Terms: zterms, Op: encoding.LE, RHS: ub}, unsat)
	if unsat {
		return Outcome{Status: StatusInfeasible}, nil
	}

	pb := solver.ParsePBConstrs(constrs)
	pb.SetCostFunc(costLits, costWeights)
	out := s.run(ctx, pb)
	if out.Values != nil {
		out.Objective = 0
		for _, terms := range s.objective {
			if v := encoding.Sum(out.Values, terms); v > out.Objective {
				out.Objective = v
			}
		}
	}
	return out, nil
}

// run streams gophersat's incumbents and keeps the latest. The stream
// closes after the final result, which is the optimum when it is Sat.
// Interrupt or ctx returns the incumbent early; the search goroutine then
// runs on detached and its remaining results are discarded.
func (s *pbSession) run(ctx context.Context, pb *solver.Problem) Outcome {
	results := make(chan solver.Result)
	go solver.New(pb).Optimal(results, nil)

	var best []bool
	for {
		select {
		case res, ok := <-results:
			if !ok {
				if best != nil {
					return Outcome{Status: StatusOptimal, Values: best}
				}
				return Outcome{Status: StatusUnknown}
			}
			switch res.Status {
			case solver.Sat:
				best = s.values(res.Model)
			case solver.Unsat:
				if best == nil {
					// drain the close
					for range results {
					}
					return Outcome{Status: StatusInfeasible}
				}
			}
		case <-s.stop:
			return s.detach(results, best)
		case <-ctx.Done():
			return s.detach(results, best)
		}
	}
}

func (s *pbSession) detach(results <-chan solver.Result, best []bool) Outcome {
	go func() {
		for range results {
		}
	}()
	if best == nil {
		return Outcome{Status: StatusUnknown, Detached: true}
	}
	return Outcome{Status: StatusFeasible, Values: best, Detached: true}
}

// values maps gophersat's model, where index i holds variable i+1, onto
// encoding variables.
func (s *pbSession) values(m []bool) []bool {
	values := make([]bool, s.nvars+1)
	for i, b := range m {
		if v := i + 1; v <= s.nvars {
			values[v] = b
		}
	}
	return values
}

func (s *pbSession) Close() error {
	s.Interrupt()
	return nil
}
