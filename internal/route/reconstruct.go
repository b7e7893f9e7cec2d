package route

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Reconstruct rebuilds one ordered route per courier by walking the selected
// arcs from the depot. Malformed witnesses never fail the call: the walk stops,
// a diagnostic is logged and recorded, and the truncated route is returned.
func Reconstruct(w Witness, log zerolog.Logger) ([][]int, []Diagnostic) {
	n := w.Depot
	routes := make([][]int, len(w.Assigned))
	var diags []Diagnostic
	report := func(c int, kind, format string, args ...any) {
		d := Diagnostic{Courier: c, Kind: kind, Msg: fmt.Sprintf(format, args...)}
		log.Warn().Int("courier", c).Str("kind", kind).Msg(d.Msg)
		diags = append(diags, d)
	}

	for c, assigned := range w.Assigned {
		routes[c] = []int{}
		used := false
		for _, a := range assigned {
			if a {
				used = true
				break
			}
		}
		if !used {
			continue
		}
		var arcs []Arc
		if c < len(w.Arcs) {
			arcs = w.Arcs[c]
		}
		succ := make(map[int]int, len(arcs))
		for _, a := range arcs {
			if prev, ok := succ[a.From]; ok {
				report(c, KindAmbiguous, "node %d has successors %d and %d; keeping %d", a.From, prev, a.To, prev)
				continue
			}
			succ[a.From] = a.To
		}

		cur := n
		for hops := 0; ; hops++ {
			if hops > n+2 {
				report(c, KindHopGuard, "walk exceeded %d hops; route truncated at %d items", n+2, len(routes[c]))
				break
			}
			next, ok := succ[cur]
			if !ok {
				if cur == n {
					report(c, KindNoExit, "no arc leaves the depot")
				} else {
					report(c, KindDeadEnd, "no arc leaves node %d; route truncated at %d items", cur, len(routes[c]))
				}
				break
			}
			if next == n {
				break
			}
			if next < 0 || next > n {
				report(c, KindDeadEnd, "arc %d->%d leaves the node range", cur, next)
				break
			}
			if next < len(assigned) && !assigned[next] {
				report(c, KindUnassigned, "route visits item %d which is not assigned to this courier", next)
			}
			routes[c] = append(routes[c], next)
			cur = next
		}
	}
	return routes, diags
}
