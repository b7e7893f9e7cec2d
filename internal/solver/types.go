package solver

import (
	"fmt"
	"strings"
	"time"

	"mcpsolve/internal/encoding"
	"mcpsolve/pkg/types"
)

// NoObjective is reported when no solution was found.
const NoObjective = -1

// Status is the unified outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Outcome is what a single engine call returns. Values is a model indexed by
// variable (index 0 unused) and is set for Optimal and Feasible outcomes.
// Detached reports that the engine's search is still running after the call
// returned.
type Outcome struct {
	Status    Status
	Values    []bool
	Objective int
	Detached  bool
}

// Strategy selects how the objective is minimized.
type Strategy string

const (
	// StrategyAuto uses native optimization when the backend offers it.
	StrategyAuto Strategy = "auto"
	// StrategyNative hands the objective to the engine in one call.
	StrategyNative Strategy = "native"
	// StrategyBisect binary-searches the objective bound with feasibility probes.
	StrategyBisect Strategy = "bisect"
)

// ParseStrategy accepts auto, native or bisect; empty means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyNative:
		return StrategyNative, nil
	case StrategyBisect, "binary":
		return StrategyBisect, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// SolveOptions configure one solve.
type SolveOptions struct {
	Backend       string
	SymmetryBreak bool
	// SymmetryMode applies when SymmetryBreak is set; the zero value means load ordering.
	SymmetryMode encoding.SymmetryMode
	TimeBudget   time.Duration
	Strategy     Strategy
}

func (o SolveOptions) symmetry() encoding.SymmetryMode {
	if !o.SymmetryBreak {
		return encoding.SymmetryNone
	}
	if o.SymmetryMode == encoding.SymmetryNone {
		return encoding.SymmetryLoad
	}
	return o.SymmetryMode
}

// Solution is the checked result of one solve. Routes hold 0-based item ids.
type Solution struct {
	Instance      string
	Backend       string
	SymmetryBreak bool
	Strategy      Strategy
	Status        Status
	Routes        [][]int
	Objective     int
	Distances     []int
	Elapsed       time.Duration
	TimeBudget    time.Duration
	Probes        int
	Diagnostics   []string
}

// HasRoutes reports whether the solution carries a witness.
func (s Solution) HasRoutes() bool {
	return s.Status == StatusOptimal || s.Status == StatusFeasible
}

// Result converts the solution into the serialized result schema. Item ids
// become 1-based. Runs that are not proven optimal report the full budget.
func (s Solution) Result() types.Result {
	budget := int(s.TimeBudget / time.Second)
	res := types.Result{Time: budget, Optimal: false, Obj: NoObjective, Sol: [][]int{}}
	if !s.HasRoutes() {
		return res
	}
	res.Obj = s.Objective
	res.Sol = make([][]int, len(s.Routes))
	for c, r := range s.Routes {
		res.Sol[c] = make([]int, len(r))
		for i, j := range r {
			res.Sol[c][i] = j + 1
		}
	}
	if s.Status == StatusOptimal {
		res.Optimal = true
		if t := int(s.Elapsed / time.Second); t < budget {
			res.Time = t
		}
	}
	return res
}
