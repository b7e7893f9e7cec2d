// Package route turns per-courier arc selections into ordered routes and
// checks the result against the instance data.
package route

import "fmt"

// Arc is a selected directed edge between two nodes.
type Arc struct{ From, To int }

// Witness is the sparse part of an engine model the routes are rebuilt from.
type Witness struct {
	Depot    int      // depot node id; also the item count
	Assigned [][]bool // [courier][item]
	Arcs     [][]Arc  // [courier] selected arcs
}

// Diagnostic kinds.
const (
	KindDeadEnd    = "dead_end"
	KindNoExit     = "no_depot_exit"
	KindAmbiguous  = "ambiguous_successor"
	KindHopGuard   = "hop_guard"
	KindUnassigned = "unassigned_visit"
	KindCoverage   = "coverage"
	KindCapacity   = "capacity"
	KindObjective  = "objective_mismatch"
)

// Diagnostic describes a recoverable defect found while rebuilding or
// checking routes.
type Diagnostic struct {
	Courier int
	Kind    string
	Msg     string
}

func (d Diagnostic) String() string {
	if d.Courier < 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
	}
	return fmt.Sprintf("courier %d %s: %s", d.Courier, d.Kind, d.Msg)
}
