package encoding

import "math/bits"

// pairwiseLimit bounds the size of at-most-one groups encoded pairwise.
const pairwiseLimit = 8

// ToCNF lowers the system to clauses, streaming each to emit. Linear
// constraints become Tseitin-encoded adder trees compared against a constant.
// Auxiliary variables are numbered above NumVars; the highest variable used
// is returned.
func (s *System) ToCNF(emit func(Clause)) int {
	b := &cnfBuilder{next: s.nvars, emit: emit}
	for _, cl := range s.Clauses {
		emit(cl)
	}
	for _, c := range s.Linears {
		for _, pb := range Normalize(c) {
			b.pb(pb)
		}
	}
	return b.next
}

type cnfBuilder struct {
	next int
	emit func(Clause)
	t    Lit // constant true, allocated lazily
}

func (b *cnfBuilder) fresh() Lit {
	b.next++
	return Lit(b.next)
}

func (b *cnfBuilder) tru() Lit {
	if b.t == 0 {
		b.t = b.fresh()
		b.emit(Clause{b.t})
	}
	return b.t
}

func (b *cnfBuilder) fls() Lit { return b.tru().Not() }

func (b *cnfBuilder) isTrue(l Lit) bool  { return b.t != 0 && l == b.t }
func (b *cnfBuilder) isFalse(l Lit) bool { return b.t != 0 && l == -b.t }

func (b *cnfBuilder) pb(p PB) {
	if p.Tautology() {
		return
	}
	if p.Unsatisfiable() {
		b.emit(Clause{b.fls()})
		return
	}
	lits := make([]Lit, len(p.Terms))
	uniform := true
	for i, t := range p.Terms {
		lits[i] = t.Lit
		if t.Coef != p.Terms[0].Coef {
			uniform = false
		}
	}
	if uniform {
		w := p.Terms[0].Coef
		need := (p.K + w - 1) / w
		slack := len(lits) - need
		switch {
		case need == 1:
			b.emit(Clause(lits))
			return
		case slack == 0:
			for _, l := range lits {
				b.emit(Clause{l})
			}
			return
		case slack == 1 && len(lits) <= pairwiseLimit:
			// at most one literal false
			for i := range lits {
				for j := i + 1; j < len(lits); j++ {
					b.emit(Clause{lits[i], lits[j]})
				}
			}
			return
		}
	}
	// Σ w·l >= K  <=>  Σ w·¬l <= W - K
	bound := p.Weight() - p.K
	vecs := make([][]Lit, 0, len(p.Terms))
	for _, t := range p.Terms {
		vecs = append(vecs, b.scaled(t.Coef, t.Lit.Not()))
	}
	for len(vecs) > 1 {
		var next [][]Lit
		for i := 0; i+1 < len(vecs); i += 2 {
			next = append(next, b.add(vecs[i], vecs[i+1]))
		}
		if len(vecs)%2 == 1 {
			next = append(next, vecs[len(vecs)-1])
		}
		vecs = next
	}
	le := b.atMost(vecs[0], bound)
	if !b.isTrue(le) {
		b.emit(Clause{le})
	}
}

// scaled returns the little-endian bit vector of w·l.
func (b *cnfBuilder) scaled(w int, l Lit) []Lit {
	out := make([]Lit, bits.Len(uint(w)))
	for i := range out {
		if w&(1<<i) != 0 {
			out[i] = l
		} else {
			out[i] = b.fls()
		}
	}
	return out
}

func (b *cnfBuilder) bit(x []Lit, i int) Lit {
	if i < len(x) {
		return x[i]
	}
	return b.fls()
}

// add builds a ripple-carry adder over x and y.
func (b *cnfBuilder) add(x, y []Lit) []Lit {
	n := len(x)
	if len(y) > n {
		n = len(y)
	}
	out := make([]Lit, 0, n+1)
	carry := b.fls()
	for i := 0; i < n; i++ {
		p, q := b.bit(x, i), b.bit(y, i)
		half := b.xor(p, q)
		out = append(out, b.xor(half, carry))
		carry = b.or(b.and(p, q), b.and(carry, half))
	}
	if !b.isFalse(carry) {
		out = append(out, carry)
	}
	return out
}

// atMost returns a literal equivalent to value(x) <= bound.
func (b *cnfBuilder) atMost(x []Lit, bound int) Lit {
	if bound < 0 {
		return b.fls()
	}
	if bits.Len(uint(bound)) > len(x) {
		return b.tru()
	}
	le := b.tru()
	for i := 0; i < len(x); i++ {
		if bound&(1<<i) != 0 {
			le = b.or(x[i].Not(), le)
		} else {
			le = b.and(x[i].Not(), le)
		}
	}
	return le
}

func (b *cnfBuilder) and(p, q Lit) Lit {
	switch {
	case b.isFalse(p) || b.isFalse(q) || p == q.Not():
		return b.fls()
	case b.isTrue(p):
		return q
	case b.isTrue(q) || p == q:
		return p
	}
	y := b.fresh()
	b.emit(Clause{y.Not(), p})
	b.emit(Clause{y.Not(), q})
	b.emit(Clause{y, p.Not(), q.Not()})
	return y
}

func (b *cnfBuilder) or(p, q Lit) Lit {
	return b.and(p.Not(), q.Not()).Not()
}

func (b *cnfBuilder) xor(p, q Lit) Lit {
	switch {
	case b.isFalse(p):
		return q
	case b.isFalse(q):
		return p
	case b.isTrue(p):
		return q.Not()
	case b.isTrue(q):
		return p.Not()
	case p == q:
		return b.fls()
	case p == q.Not():
		return b.tru()
	}
	y := b.fresh()
	b.emit(Clause{y.Not(), p, q})
	b.emit(Clause{y.Not(), p.Not(), q.Not()})
	b.emit(Clause{y, p.Not(), q})
	b.emit(Clause{y, p, q.Not()})
	return y
}
