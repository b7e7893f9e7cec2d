package encoding

import (
	"fmt"
	"strings"

	"mcpsolve/internal/instance"
	"mcpsolve/internal/route"
)

// SymmetryMode selects how interchangeable couriers are ordered.
type SymmetryMode int

const (
	// SymmetryNone adds no ordering constraints.
	SymmetryNone SymmetryMode = iota
	// SymmetryLoad orders couriers of equal capacity by non-increasing load.
	SymmetryLoad
	// SymmetryLex orders couriers of equal capacity by their assignment
	// vectors, lexicographically non-increasing.
	SymmetryLex
)

func (m SymmetryMode) String() string {
	switch m {
	case SymmetryNone:
		return "none"
	case SymmetryLoad:
		return "load"
	case SymmetryLex:
		return "lex"
	}
	return fmt.Sprintf("SymmetryMode(%d)", int(m))
}

// ParseSymmetryMode accepts "none", "load" or "lex" (case-insensitive).
func ParseSymmetryMode(s string) (SymmetryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return SymmetryNone, nil
	case "load", "":
		return SymmetryLoad, nil
	case "lex", "lexicographic":
		return SymmetryLex, nil
	}
	return SymmetryNone, fmt.Errorf("unknown symmetry mode %q", s)
}

// Options control one encoding.
type Options struct {
	Symmetry SymmetryMode
	// Bounded adds "every courier distance <= Bound".
	Bounded bool
	Bound   int
}

// AssignKey identifies assigned(courier, item).
type AssignKey struct{ Courier, Item int }

// ArcKey identifies arc(courier, from, to).
type ArcKey struct{ Courier, From, To int }

// Encoding is one MCP instance encoded as a System, together with the
// variable maps needed to read a model back.
type Encoding struct {
	Inst *instance.Instance
	Opts Options
	Sys  *System

	assigned map[AssignKey]Lit
	arcs     map[ArcKey]Lit
	active   []Lit
	// position[k-1] <=> position(courier, item) >= k, k = 1..n
	position map[AssignKey][]Lit
}

// Encode builds a fresh constraint system for in. Identical inputs give
// identical systems.
func Encode(in *instance.Instance, opts Options) *Encoding {
	e := &Encoding{
		Inst:     in,
		Opts:     opts,
		Sys:      &System{},
		assigned: make(map[AssignKey]Lit, in.M*in.N),
		arcs:     make(map[ArcKey]Lit, in.M*in.Nodes()*in.N),
		active:   make([]Lit, in.M),
		position: make(map[AssignKey][]Lit, in.M*in.N),
	}
	e.declare()
	e.coverage()
	e.capacity()
	e.flow()
	e.subtours()
	e.objective()
	switch opts.Symmetry {
	case SymmetryLoad:
		e.loadOrder()
	case SymmetryLex:
		e.lexOrder()
	}
	return e
}

func (e *Encoding) declare() {
	in, s := e.Inst, e.Sys
	for c := 0; c < in.M; c++ {
		for j := 0; j < in.N; j++ {
			e.assigned[AssignKey{c, j}] = s.NewVar()
		}
	}
	for c := 0; c < in.M; c++ {
		e.active[c] = s.NewVar()
	}
	for c := 0; c < in.M; c++ {
		for from := 0; from < in.Nodes(); from++ {
			for to := 0; to < in.Nodes(); to++ {
				if from != to {
					e.arcs[ArcKey{c, from, to}] = s.NewVar()
				}
			}
		}
	}
	for c := 0; c < in.M; c++ {
		for j := 0; j < in.N; j++ {
			ge := make([]Lit, in.N)
			for k := range ge {
				ge[k] = s.NewVar()
			}
			e.position[AssignKey{c, j}] = ge
		}
	}
}

// Assigned returns the literal of assigned(courier, item).
func (e *Encoding) Assigned(c, j int) Lit { return e.assigned[AssignKey{c, j}] }

// Arc returns the literal of arc(courier, from, to); ok is false for
// self-loops and out-of-range nodes.
func (e *Encoding) Arc(c, from, to int) (Lit, bool) {
	l, ok := e.arcs[ArcKey{c, from, to}]
	return l, ok
}

// Active returns the literal stating that the courier serves at least one item.
func (e *Encoding) Active(c int) Lit { return e.active[c] }

// coverage: each item goes to exactly one courier.
func (e *Encoding) coverage() {
	in := e.Inst
	for j := 0; j < in.N; j++ {
		terms := make([]Term, 0, in.M)
		for c := 0; c < in.M; c++ {
			terms = append(terms, Term{1, e.Assigned(c, j)})
		}
		e.Sys.AddLinear(terms, EQ, 1, fmt.Sprintf("coverage[%d]", j))
	}
}

func (e *Encoding) loadTerms(c int) []Term {
	terms := make([]Term, 0, e.Inst.N)
	for j := 0; j < e.Inst.N; j++ {
		terms = append(terms, Term{e.Inst.Sizes[j], e.Assigned(c, j)})
	}
	return terms
}

func (e *Encoding) capacity() {
	for c := 0; c < e.Inst.M; c++ {
		e.Sys.AddLinear(e.loadTerms(c), LE, e.Inst.Capacities[c], fmt.Sprintf("capacity[%d]", c))
	}
}

// flow ties arcs to assignments: a used courier leaves and re-enters the
// depot once, every assigned item has one incoming and one outgoing arc, and
// an idle courier selects no arc at all.
func (e *Encoding) flow() {
	in, s := e.Inst, e.Sys
	d := in.Depot()
	for c := 0; c < in.M; c++ {
		act := e.active[c]
		serves := make(Clause, 0, in.N+1)
		serves = append(serves, act.Not())
		for j := 0; j < in.N; j++ {
			s.Implies(e.Assigned(c, j), act)
			serves = append(serves, e.Assigned(c, j))
		}
		s.AddClause(serves...)

		out := []Term{{-1, act}}
		back := []Term{{-1, act}}
		for j := 0; j < in.N; j++ {
			l, _ := e.Arc(c, d, j)
			out = append(out, Term{1, l})
			l, _ = e.Arc(c, j, d)
			back = append(back, Term{1, l})
		}
		s.AddLinear(out, EQ, 0, fmt.Sprintf("depot_out[%d]", c))
		s.AddLinear(back, EQ, 0, fmt.Sprintf("depot_in[%d]", c))

		for j := 0; j < in.N; j++ {
			asg := e.Assigned(c, j)
			inTerms := []Term{{-1, asg}}
			outTerms := []Term{{-1, asg}}
			for k := 0; k < in.Nodes(); k++ {
				if k == j {
					continue
				}
				l, _ := e.Arc(c, k, j)
				inTerms = append(inTerms, Term{1, l})
				l, _ = e.Arc(c, j, k)
				outTerms = append(outTerms, Term{1, l})
			}
			s.AddLinear(inTerms, EQ, 0, fmt.Sprintf("item_in[%d,%d]", c, j))
			s.AddLinear(outTerms, EQ, 0, fmt.Sprintf("item_out[%d,%d]", c, j))
		}
	}
}

// subtours adds Miller-Tucker-Zemlin ordering over order-encoded positions:
// an item is positioned (>= 1) iff assigned, and every item-to-item arc
// forces the head strictly after the tail.
func (e *Encoding) subtours() {
	in, s := e.Inst, e.Sys
	n := in.N
	for c := 0; c < in.M; c++ {
		for j := 0; j < n; j++ {
			ge := e.position[AssignKey{c, j}]
			for k := 1; k < n; k++ {
				s.Implies(ge[k], ge[k-1])
			}
			s.Implies(ge[0], e.Assigned(c, j))
			s.Implies(e.Assigned(c, j), ge[0])
		}
		for p := 0; p < n; p++ {
			gp := e.position[AssignKey{c, p}]
			for q := 0; q < n; q++ {
				if p == q {
					continue
				}
				arc, _ := e.Arc(c, p, q)
				gq := e.position[AssignKey{c, q}]
				// pos(p) >= k  =>  pos(q) >= k+1
				for k := 1; k <= n; k++ {
					if k < n {
						s.AddClause(arc.Not(), gp[k-1].Not(), gq[k])
					} else {
						s.AddClause(arc.Not(), gp[k-1].Not())
					}
				}
			}
		}
	}
}

// DistanceTerms returns the weighted arc terms summing to the courier's
// route length.
func (e *Encoding) DistanceTerms(c int) []Term {
	in := e.Inst
	var terms []Term
	for from := 0; from < in.Nodes(); from++ {
		for to := 0; to < in.Nodes(); to++ {
			if from == to {
				continue
			}
			if w := in.Distance(from, to); w != 0 {
				l, _ := e.Arc(c, from, to)
				terms = append(terms, Term{w, l})
			}
		}
	}
	return terms
}

func (e *Encoding) objective() {
	e.Sys.Objective = make([][]Term, e.Inst.M)
	for c := 0; c < e.Inst.M; c++ {
		terms := e.DistanceTerms(c)
		e.Sys.Objective[c] = terms
		if e.Opts.Bounded {
			e.Sys.AddLinear(terms, LE, e.Opts.Bound, fmt.Sprintf("bound[%d]", c))
		}
	}
}

// loadOrder: within a group of equal-capacity couriers, loads are
// non-increasing by courier id.
func (e *Encoding) loadOrder() {
	for _, g := range e.Inst.CapacityGroups() {
		for i := 0; i+1 < len(g); i++ {
			c, next := g[i], g[i+1]
			terms := e.loadTerms(c)
			for _, t := range e.loadTerms(next) {
				terms = append(terms, Term{-t.Coef, t.Lit})
			}
			e.Sys.AddLinear(terms, GE, 0, fmt.Sprintf("symmetry_load[%d,%d]", c, next))
		}
	}
}

// lexOrder: within a group of equal-capacity couriers, the lowest item served
// by either of two neighbours belongs to the first one. Since items are
// partitioned this makes assignment vectors lexicographically non-increasing.
func (e *Encoding) lexOrder() {
	for _, g := range e.Inst.CapacityGroups() {
		for i := 0; i+1 < len(g); i++ {
			c, next := g[i], g[i+1]
			for j := 0; j < e.Inst.N; j++ {
				cl := Clause{e.Assigned(next, j).Not()}
				for k := 0; k < j; k++ {
					cl = append(cl, e.Assigned(c, k))
				}
				e.Sys.AddClause(cl...)
			}
		}
	}
}

// Witness extracts per-courier assignments and selected arcs from a model.
func (e *Encoding) Witness(values []bool) route.Witness {
	in := e.Inst
	w := route.Witness{
		Depot:    in.Depot(),
		Assigned: make([][]bool, in.M),
		Arcs:     make([][]route.Arc, in.M),
	}
	for c := 0; c < in.M; c++ {
		w.Assigned[c] = make([]bool, in.N)
		for j := 0; j < in.N; j++ {
			w.Assigned[c][j] = Value(values, e.Assigned(c, j))
		}
		for from := 0; from < in.Nodes(); from++ {
			for to := 0; to < in.Nodes(); to++ {
				if l, ok := e.Arc(c, from, to); ok && Value(values, l) {
					w.Arcs[c] = append(w.Arcs[c], route.Arc{From: from, To: to})
				}
			}
		}
	}
	return w
}

// ObjectiveOf returns the largest courier distance selected by a model.
func (e *Encoding) ObjectiveOf(values []bool) int {
	return e.Sys.ObjectiveValue(values)
}

// Assignment encodes a route set as a complete model of the system.
// Routes use 0-based item ids, one per courier.
func (e *Encoding) Assignment(routes [][]int) ([]bool, error) {
	in := e.Inst
	if len(routes) != in.M {
		return nil, fmt.Errorf("got %d routes for %d couriers", len(routes), in.M)
	}
	values := make([]bool, e.Sys.NumVars()+1)
	set := func(l Lit) { values[l.Var()] = l.Positive() }
	d := in.Depot()
	for c, r := range routes {
		if len(r) == 0 {
			continue
		}
		set(e.active[c])
		prev := d
		for i, j := range r {
			if j < 0 || j >= in.N {
				return nil, fmt.Errorf("courier %d: item %d out of range", c, j)
			}
			set(e.Assigned(c, j))
			arc, ok := e.Arc(c, prev, j)
			if !ok {
				return nil, fmt.Errorf("courier %d: no arc %d->%d", c, prev, j)
			}
			set(arc)
			for k := 0; k <= i && k < in.N; k++ {
				set(e.position[AssignKey{c, j}][k])
			}
			prev = j
		}
		arc, _ := e.Arc(c, prev, d)
		set(arc)
	}
	return values, nil
}
