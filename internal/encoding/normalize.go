package encoding

import "sort"

// PB is a normalized pseudo-boolean constraint Σ Terms >= K where every
// coefficient is positive and every variable appears at most once.
type PB struct {
	Terms []Term
	K     int
}

// Tautology reports whether the constraint holds under every assignment.
func (p PB) Tautology() bool { return p.K <= 0 }

// Unsatisfiable reports whether no assignment can reach K.
func (p PB) Unsatisfiable() bool { return p.Weight() < p.K }

// Weight returns the sum of all coefficients.
func (p PB) Weight() int {
	total := 0
	for _, t := range p.Terms {
		total += t.Coef
	}
	return total
}

// Normalize rewrites c into one (or, for EQ, two) constraints of the form
// Σ w·lit >= k with positive weights. Negative coefficients are absorbed by
// negating the literal; duplicated variables are merged; weights above k are
// clipped to k.
func Normalize(c Linear) []PB {
	switch c.Op {
	case GE:
		return []PB{geForm(c.Terms, c.RHS, 1)}
	case LE:
		return []PB{geForm(c.Terms, c.RHS, -1)}
	default:
		return []PB{geForm(c.Terms, c.RHS, 1), geForm(c.Terms, c.RHS, -1)}
	}
}

// geForm normalizes sign*Σ terms >= sign*rhs.
func geForm(terms []Term, rhs, sign int) PB {
	k := sign * rhs
	coef := make(map[int]int, len(terms))
	for _, t := range terms {
		a := sign * t.Coef
		v := t.Lit.Var()
		if t.Lit.Positive() {
			coef[v] += a
		} else {
			// a·¬x = a - a·x
			k -= a
			coef[v] -= a
		}
	}
	vars := make([]int, 0, len(coef))
	for v, a := range coef {
		if a != 0 {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)
	out := PB{Terms: make([]Term, 0, len(vars)), K: k}
	for _, v := range vars {
		a := coef[v]
		if a > 0 {
			out.Terms = append(out.Terms, Term{Coef: a, Lit: Lit(v)})
		} else {
			// a·x = a + |a|·¬x
			out.K -= a
			out.Terms = append(out.Terms, Term{Coef: -a, Lit: Lit(-v)})
		}
	}
	if out.K > 0 {
		for i := range out.Terms {
			if out.Terms[i].Coef > out.K {
				out.Terms[i].Coef = out.K
			}
		}
	}
	return out
}
