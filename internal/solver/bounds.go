package solver

import "mcpsolve/internal/instance"

// Bounds returns an interval [lb, ub] containing the optimal objective of a
// feasible instance. lb is the longest shortest-path round trip
// depot -> item -> depot, which the courier serving that item cannot beat
// even when the matrix violates the triangle inequality. ub allows n+1 arcs
// of maximum weight.
func Bounds(in *instance.Instance) (lb, ub int) {
	sp := shortestPaths(in)
	d := in.Depot()
	for j := 0; j < in.N; j++ {
		if rt := sp[d][j] + sp[j][d]; rt > lb {
			lb = rt
		}
	}
	ub = (in.N + 1) * in.MaxDistance()
	if ub < lb {
		ub = lb
	}
	return lb, ub
}

// shortestPaths runs Floyd-Warshall over a copy of the distance matrix.
func shortestPaths(in *instance.Instance) [][]int {
	n := in.Nodes()
	sp := make([][]int, n)
	for i := range sp {
		sp[i] = append([]int(nil), in.Dist[i]...)
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if via := sp[i][k] + sp[k][j]; via < sp[i][j] {
					sp[i][j] = via
				}
			}
		}
	}
	return sp
}
