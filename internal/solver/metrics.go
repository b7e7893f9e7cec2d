package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Completed solves by backend and status.",
		},
		[]string{"backend", "status"},
	)
	solveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock duration of solves by backend.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 150, 300},
		},
		[]string{"backend"},
	)
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "engine_calls_total",
			Help:      "Engine calls by backend, outcome status and supervisor verdict.",
		},
		[]string{"backend", "status", "verdict"},
	)
	abandonedWorkers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "abandoned_workers_total",
			Help:      "Engine workers left running after ignoring an interrupt.",
		},
	)
	detachedSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "detached_searches_total",
			Help:      "Engine searches left running in the background after an interrupt.",
		},
		[]string{"backend"},
	)
	objectiveMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mcpsolve",
			Subsystem: "solver",
			Name:      "objective_mismatches_total",
			Help:      "Solutions whose reported objective disagreed with the recomputed one.",
		},
	)
)

func init() {
	prometheus.MustRegister(solvesTotal, solveDuration, probesTotal, abandonedWorkers, detachedSearches, objectiveMismatches)
}
