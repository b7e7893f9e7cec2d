package route

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"mcpsolve/internal/instance"
)

// Tolerance is the largest accepted gap between a reported and a recomputed
// objective.
const Tolerance = 0.5

// Report is the outcome of verifying a set of routes.
type Report struct {
	Distances   []int // recomputed per courier
	Objective   int   // authoritative: max of Distances
	Reported    int
	Mismatch    bool
	Diagnostics []Diagnostic
}

// Length returns depot -> r[0] -> ... -> r[k-1] -> depot, or 0 for an empty
// route.
func Length(in *instance.Instance, r []int) int {
	if len(r) == 0 {
		return 0
	}
	d := in.Depot()
	total := in.Distance(d, r[0])
	for i := 1; i < len(r); i++ {
		total += in.Distance(r[i-1], r[i])
	}
	return total + in.Distance(r[len(r)-1], d)
}

// Verify recomputes every route length and compares the maximum with the
// engine-reported objective. The recomputed value always wins; a mismatch is
// logged. Coverage and capacity defects are reported as diagnostics.
func Verify(in *instance.Instance, routes [][]int, reported int, log zerolog.Logger) Report {
	rep := Report{Distances: make([]int, len(routes)), Reported: reported}
	for c, r := range routes {
		rep.Distances[c] = Length(in, r)
		if rep.Distances[c] > rep.Objective {
			rep.Objective = rep.Distances[c]
		}
	}
	if math.Abs(float64(rep.Objective-reported)) > Tolerance {
		rep.Mismatch = true
		msg := fmt.Sprintf("reported objective %d, recomputed %d; using recomputed", reported, rep.Objective)
		log.Warn().Int("reported", reported).Int("recomputed", rep.Objective).Msg("objective mismatch")
		rep.Diagnostics = append(rep.Diagnostics, Diagnostic{Courier: -1, Kind: KindObjective, Msg: msg})
	}
	for _, d := range CheckPartition(in, routes) {
		log.Warn().Int("courier", d.Courier).Str("kind", d.Kind).Msg(d.Msg)
		rep.Diagnostics = append(rep.Diagnostics, d)
	}
	return rep
}

// CheckPartition reports items visited zero or several times and couriers
// loaded beyond capacity.
func CheckPartition(in *instance.Instance, routes [][]int) []Diagnostic {
	var diags []Diagnostic
	seen := make([]int, in.N)
	for c, r := range routes {
		load := 0
		for _, j := range r {
			if j < 0 || j >= in.N {
				diags = append(diags, Diagnostic{Courier: c, Kind: KindCoverage, Msg: fmt.Sprintf("route holds non-item node %d", j)})
				continue
			}
			seen[j]++
			load += in.Sizes[j]
		}
		if c < in.M && load > in.Capacities[c] {
			diags = append(diags, Diagnostic{Courier: c, Kind: KindCapacity,
				Msg: fmt.Sprintf("load %d exceeds capacity %d", load, in.Capacities[c])})
		}
	}
	for j, k := range seen {
		if k != 1 {
			diags = append(diags, Diagnostic{Courier: -1, Kind: KindCoverage,
				Msg: fmt.Sprintf("item %d visited %d times", j, k)})
		}
	}
	return diags
}
