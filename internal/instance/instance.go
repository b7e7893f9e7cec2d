// Package instance holds the Multiple Courier Problem input: couriers with
// capacities, items with sizes, and a distance matrix over items plus a single
// depot. Instances are immutable once built.
package instance

import (
	"fmt"
	"sort"
)

// Instance is one normalized MCP problem. Nodes 0..N-1 are items; node N is
// the depot.
type Instance struct {
	Name       string
	M          int
	N          int
	Capacities []int
	Sizes      []int
	Dist       [][]int
}

// New validates the given data and builds an Instance. The slices are copied.
func New(name string, capacities, sizes []int, dist [][]int) (*Instance, error) {
	in := &Instance{
		Name:       name,
		M:          len(capacities),
		N:          len(sizes),
		Capacities: append([]int(nil), capacities...),
		Sizes:      append([]int(nil), sizes...),
		Dist:       make([][]int, len(dist)),
	}
	for i, row := range dist {
		in.Dist[i] = append([]int(nil), row...)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// Validate checks the structural invariants of the instance.
func (in *Instance) Validate() error {
	if in.M < 1 {
		return fmt.Errorf("instance %q: need at least one courier, got %d", in.Name, in.M)
	}
	if in.N < 0 {
		return fmt.Errorf("instance %q: negative item count %d", in.Name, in.N)
	}
	if len(in.Capacities) != in.M {
		return fmt.Errorf("instance %q: %d capacities for %d couriers", in.Name, len(in.Capacities), in.M)
	}
	if len(in.Sizes) != in.N {
		return fmt.Errorf("instance %q: %d sizes for %d items", in.Name, len(in.Sizes), in.N)
	}
	for c, l := range in.Capacities {
		if l <= 0 {
			return fmt.Errorf("instance %q: courier %d has non-positive capacity %d", in.Name, c, l)
		}
	}
	for j, s := range in.Sizes {
		if s < 0 {
			return fmt.Errorf("instance %q: item %d has negative size %d", in.Name, j, s)
		}
	}
	nodes := in.N + 1
	if len(in.Dist) != nodes {
		return fmt.Errorf("instance %q: distance matrix has %d rows, want %d", in.Name, len(in.Dist), nodes)
	}
	for i, row := range in.Dist {
		if len(row) != nodes {
			return fmt.Errorf("instance %q: distance row %d has %d columns, want %d", in.Name, i, len(row), nodes)
		}
		for j, d := range row {
			if d < 0 {
				return fmt.Errorf("instance %q: negative distance %d at (%d,%d)", in.Name, d, i, j)
			}
		}
		if row[i] != 0 {
			return fmt.Errorf("instance %q: non-zero diagonal %d at node %d", in.Name, row[i], i)
		}
	}
	return nil
}

// Depot returns the depot node id.
func (in *Instance) Depot() int { return in.N }

// Nodes returns the number of nodes including the depot.
func (in *Instance) Nodes() int { return in.N + 1 }

// Distance returns the weight of arc (from, to).
func (in *Instance) Distance(from, to int) int { return in.Dist[from][to] }

// MaxCapacity returns the largest courier capacity.
func (in *Instance) MaxCapacity() int {
	best := 0
	for _, l := range in.Capacities {
		if l > best {
			best = l
		}
	}
	return best
}

// TotalCapacity returns the sum of all courier capacities.
func (in *Instance) TotalCapacity() int {
	total := 0
	for _, l := range in.Capacities {
		total += l
	}
	return total
}

// TotalSize returns the sum of all item sizes.
func (in *Instance) TotalSize() int {
	total := 0
	for _, s := range in.Sizes {
		total += s
	}
	return total
}

// MaxDistance returns the largest entry of the distance matrix.
func (in *Instance) MaxDistance() int {
	best := 0
	for _, row := range in.Dist {
		for _, d := range row {
			if d > best {
				best = d
			}
		}
	}
	return best
}

// Infeasible reports whether the instance cannot be solved regardless of
// routing, with a short reason.
func (in *Instance) Infeasible() (bool, string) {
	maxCap := in.MaxCapacity()
	for j, s := range in.Sizes {
		if s > maxCap {
			return true, fmt.Sprintf("item %d (size %d) exceeds every capacity (max %d)", j, s, maxCap)
		}
	}
	if total, capTotal := in.TotalSize(), in.TotalCapacity(); total > capTotal {
		return true, fmt.Sprintf("total size %d exceeds total capacity %d", total, capTotal)
	}
	return false, ""
}

// CapacityGroups partitions couriers by identical capacity. Each group lists
// courier ids in increasing order; groups are ordered by their first courier.
func (in *Instance) CapacityGroups() [][]int {
	byCap := make(map[int][]int)
	var order []int
	for c, l := range in.Capacities {
		if _, ok := byCap[l]; !ok {
			order = append(order, l)
		}
		byCap[l] = append(byCap[l], c)
	}
	groups := make([][]int, 0, len(order))
	for _, l := range order {
		g := byCap[l]
		sort.Ints(g)
		groups = append(groups, g)
	}
	return groups
}
