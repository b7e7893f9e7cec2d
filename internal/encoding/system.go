// Package encoding builds engine-neutral constraint systems for the Multiple
// Courier Problem.
//
// A System is a set of boolean variables, clauses over them, and linear
// pseudo-boolean constraints. Engine adapters compile a System into their own
// representation; pure SAT engines go through ToCNF.
package encoding

import (
	"fmt"
	"strings"
)

// Lit is a DIMACS-style literal: +v is variable v, -v its negation. v >= 1.
type Lit int

// Var returns the variable index of l.
func (l Lit) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Not returns the negation of l.
func (l Lit) Not() Lit { return -l }

// Positive reports whether l is a non-negated literal.
func (l Lit) Positive() bool { return l > 0 }

// Op is the relation of a linear constraint.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Term contributes Coef when Lit is true and 0 otherwise.
type Term struct {
	Coef int
	Lit  Lit
}

// Linear is Σ terms (Op) RHS.
type Linear struct {
	Terms []Term
	Op    Op
	RHS   int
	Tag   string
}

func (c Linear) String() string {
	var b strings.Builder
	for i, t := range c.Terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%d*%d", t.Coef, t.Lit)
	}
	fmt.Fprintf(&b, " %s %d", c.Op, c.RHS)
	if c.Tag != "" {
		fmt.Fprintf(&b, " [%s]", c.Tag)
	}
	return b.String()
}

// Clause is a disjunction of literals.
type Clause []Lit

// System is an engine-neutral constraint system. Objective, when set, holds
// one weighted term list per courier; the goal is to minimize the largest sum.
type System struct {
	nvars     int
	Clauses   []Clause
	Linears   []Linear
	Objective [][]Term
}

// NewVar allocates a fresh variable and returns its positive literal.
func (s *System) NewVar() Lit {
	s.nvars++
	return Lit(s.nvars)
}

// NumVars returns the number of allocated variables.
func (s *System) NumVars() int { return s.nvars }

// AddClause appends the disjunction of lits.
func (s *System) AddClause(lits ...Lit) {
	s.Clauses = append(s.Clauses, append(Clause(nil), lits...))
}

// Implies adds a -> b.
func (s *System) Implies(a, b Lit) { s.AddClause(a.Not(), b) }

// AddLinear appends Σ terms op rhs. Zero-coefficient terms are dropped.
func (s *System) AddLinear(terms []Term, op Op, rhs int, tag string) {
	kept := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	s.Linears = append(s.Linears, Linear{Terms: kept, Op: op, RHS: rhs, Tag: tag})
}

// Value reports whether l is true under values, indexed by variable
// (values[0] unused). Out-of-range variables read as false.
func Value(values []bool, l Lit) bool {
	v := l.Var()
	b := v < len(values) && values[v]
	if l.Positive() {
		return b
	}
	return !b
}

// Sum evaluates Σ terms under values.
func Sum(values []bool, terms []Term) int {
	total := 0
	for _, t := range terms {
		if Value(values, t.Lit) {
			total += t.Coef
		}
	}
	return total
}

// Holds reports whether c is satisfied under values.
func (c Linear) Holds(values []bool) bool {
	sum := Sum(values, c.Terms)
	switch c.Op {
	case LE:
		return sum <= c.RHS
	case GE:
		return sum >= c.RHS
	default:
		return sum == c.RHS
	}
}

// Satisfied checks a complete assignment against every clause and linear
// constraint, returning a description of the first violation.
func (s *System) Satisfied(values []bool) error {
	for i, cl := range s.Clauses {
		ok := false
		for _, l := range cl {
			if Value(values, l) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("clause %d %v violated", i, cl)
		}
	}
	for i, c := range s.Linears {
		if !c.Holds(values) {
			return fmt.Errorf("linear %d (%s) violated: sum=%d", i, c, Sum(values, c.Terms))
		}
	}
	return nil
}

// ObjectiveValue returns the largest per-courier objective sum, or 0 when no
// objective is set.
func (s *System) ObjectiveValue(values []bool) int {
	best := 0
	for _, terms := range s.Objective {
		if v := Sum(values, terms); v > best {
			best = v
		}
	}
	return best
}
