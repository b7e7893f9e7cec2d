package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mk "github.com/gitrdm/gokanlogic/pkg/minikanren"

	"mcpsolve/internal/encoding"
)

// FD values for booleans; gokanlogic domains start at 1.
const (
	fdFalse = 1
	fdTrue  = 2
)

// gokandoBackend models systems as finite-domain constraint programs: each
// boolean is an FD variable over {1,2} and each linear constraint a
// bounds-consistent LinearSum.
type gokandoBackend struct{}

// NewGokandoBackend returns the "cp" backend.
func NewGokandoBackend() Backend { return gokandoBackend{} }

func (gokandoBackend) Name() string { return "cp" }

func (gokandoBackend) Description() string {
	return "finite-domain propagation and branch-and-bound (gitrdm/gokanlogic)"
}

func (gokandoBackend) Capabilities() Capabilities {
	return Capabilities{NativeOptimize: true, Interruptible: true}
}

func (gokandoBackend) Start(sys *encoding.System) (Session, error) {
	s := &fdSession{sys: sys, stop: make(chan struct{})}
	return s, nil
}

type fdSession struct {
	sys  *encoding.System
	once sync.Once
	stop chan struct{}
}

// fdModel is one compiled gokanlogic model.
type fdModel struct {
	model *mk.Model
	vars  []*mk.FDVariable // index = encoding variable; 0 unused
	one   *mk.FDVariable
	unsat bool
}

func (s *fdSession) build() (*fdModel, error) {
	m := &fdModel{model: mk.NewModel(), vars: make([]*mk.FDVariable, s.sys.NumVars()+1)}
	for v := 1; v <= s.sys.NumVars(); v++ {
		m.vars[v] = m.model.NewVariable(mk.NewBitSetDomain(fdTrue))
	}
	m.one = m.model.NewVariableWithName(mk.DomainValues(1), "one")
	for _, cl := range s.sys.Clauses {
		terms := make([]encoding.Term, len(cl))
		for i, l := range cl {
			terms[i] = encoding.Term{Coef: 1, Lit: l}
		}
		if err := m.linear(terms, encoding.GE, 1); err != nil {
			return nil, err
		}
	}
	for _, c := range s.sys.Linears {
		if err := m.linear(c.Terms, c.Op, c.RHS); err != nil {
			return nil, fmt.Errorf("linear %s: %w", c.Tag, err)
		}
	}
	return m, nil
}

// expr rewrites Σ coef·lit over booleans b (b = x-1 for FD value x) as
// Σ a_i·x_i + k, returning the range [lo, hi] the sum can take.
func (m *fdModel) expr(terms []encoding.Term) (vars []*mk.FDVariable, coeffs []int, k, lo, hi int) {
	byVar := make(map[int]int)
	var order []int
	for _, t := range terms {
		if t.Coef == 0 {
			continue
		}
		v := t.Lit.Var()
		if _, ok := byVar[v]; !ok {
			order = append(order, v)
		}
		if t.Lit.Positive() {
			// a·b = a·x - a
			byVar[v] += t.Coef
			k -= t.Coef
		} else {
			// a·(1-b) = 2a - a·x
			byVar[v] -= t.Coef
			k += 2 * t.Coef
		}
		if t.Coef > 0 {
			hi += t.Coef
		} else {
			lo += t.Coef
		}
	}
	for _, v := range order {
		if a := byVar[v]; a != 0 {
			vars = append(vars, m.vars[v])
			coeffs = append(coeffs, a)
		}
	}
	return vars, coeffs, k, lo, hi
}

// linear posts Σ terms op rhs as LinearSum(vars, one) = t with
// t = sum - lo + 1 kept inside [1, hi-lo+1].
func (m *fdModel) linear(terms []encoding.Term, op encoding.Op, rhs int) error {
	if m.unsat {
		return nil
	}
	vars, coeffs, k, lo, hi := m.expr(terms)
	min, max := lo, hi
	switch op {
	case encoding.LE:
		if rhs < max {
			max = rhs
		}
	case encoding.GE:
		if rhs > min {
			min = rhs
		}
	default:
		if rhs > min {
			min = rhs
		}
		if rhs < max {
			max = rhs
		}
	}
	if min > max {
		m.unsat = true
		return nil
	}
	if len(vars) == 0 || (min == lo && max == hi) {
		// constant or unconstrained sum
		return nil
	}
	total := m.model.NewVariable(mk.DomainRange(min-lo+1, max-lo+1))
	vars = append(vars, m.one)
	coeffs = append(coeffs, k-lo+1)
	c, err := mk.NewLinearSum(vars, coeffs, total)
	if err != nil {
		return err
	}
	m.model.AddConstraint(c)
	return nil
}

func (m *fdModel) values(sol []int) []bool {
	values := make([]bool, len(m.vars))
	for v := 1; v < len(m.vars); v++ {
		if id := m.vars[v].ID(); id < len(sol) {
			values[v] = sol[id] == fdTrue
		}
	}
	return values
}

// solveCtx derives a context that is also canceled by Interrupt.
func (s *fdSession) solveCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-cctx.Done():
		}
	}()
	return cctx, cancel
}

func (s *fdSession) Interrupt() { s.once.Do(func() { close(s.stop) }) }

func (s *fdSession) Check(ctx context.Context) (Outcome, error) {
	m, err := s.build()
	if err != nil {
		return Outcome{}, err
	}
	if m.unsat {
		return Outcome{Status: StatusInfeasible}, nil
	}
	cctx, cancel := s.solveCtx(ctx)
	defer cancel()
	sols, err := mk.NewSolver(m.model).Solve(cctx, 1)
	if len(sols) > 0 {
		return Outcome{Status: StatusFeasible, Values: m.values(sols[0])}, nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Outcome{Status: StatusUnknown}, nil
		}
		return Outcome{}, err
	}
	return Outcome{Status: StatusInfeasible}, nil
}

// Minimize adds one distance variable per courier (offset by one so idle
// couriers sit at 1), constrains their maximum to an objective variable over
// [1, ub+1], and runs branch-and-bound on it. lb only rejects empty
// intervals; it is never posted, so a loose lower bound cannot cut off the
// optimum.
func (s *fdSession) Minimize(ctx context.Context, lb, ub int) (Outcome, error) {
	m, err := s.build()
	if err != nil {
		return Outcome{}, err
	}
	if m.unsat || lb > ub {
		return Outcome{Status: StatusInfeasible}, nil
	}
	dists := make([]*mk.FDVariable, 0, len(s.sys.Objective))
	for c, terms := range s.sys.Objective {
		d := m.model.NewVariableWithName(mk.DomainRange(1, ub+1), fmt.Sprintf("dist%d", c))
		vars, coeffs, k, _, _ := m.expr(terms)
		// Σ a·x + k + 1 = d
		vars = append(vars, m.one)
		coeffs = append(coeffs, k+1)
		sum, err := mk.NewLinearSum(vars, coeffs, d)
		if err != nil {
			return Outcome{}, err
		}
		m.model.AddConstraint(sum)
		dists = append(dists, d)
	}
	obj := m.model.NewVariableWithName(mk.DomainRange(1, ub+1), "objective")
	maxc, err := mk.NewMax(dists, obj)
	if err != nil {
		return Outcome{}, err
	}
	m.model.AddConstraint(maxc)

	cctx, cancel := s.solveCtx(ctx)
	defer cancel()
	sol, best, err := mk.NewSolver(m.model).SolveOptimal(cctx, obj, true)
	switch {
	case err == nil && sol == nil:
		return Outcome{Status: StatusInfeasible}, nil
	case err == nil:
		return Outcome{Status: StatusOptimal, Values: m.values(sol), Objective: best - 1}, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if sol != nil {
			return Outcome{Status: StatusFeasible, Values: m.values(sol), Objective: best - 1}, nil
		}
		return Outcome{Status: StatusUnknown}, nil
	default:
		return Outcome{}, err
	}
}

func (s *fdSession) Close() error {
	s.Interrupt()
	return nil
}
