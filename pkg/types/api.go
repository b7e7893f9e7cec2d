package types

// SolveRequest is the payload of POST /solve. Exactly one of Instance and
// Data must be set.
type SolveRequest struct {
	// Instance file contents in the line-oriented .dat format.
	// example: 2\n3\n10 10\n5 5 5\n0 3 4 2\n3 0 5 3\n4 5 0 4\n2 3 4 0\n
	Instance string `json:"instance,omitempty" example:"2\n3\n10 10\n5 5 5\n0 3 4 2\n3 0 5 3\n4 5 0 4\n2 3 4 0\n"`
	// Structured instance data, as an alternative to Instance.
	Data *InstanceData `json:"data,omitempty"`
	// Optional instance name used in logs and events.
	// example: inst01
	Name string `json:"name,omitempty" example:"inst01"`
	// Backend name; empty selects the server default.
	// example: pb
	Backend string `json:"backend,omitempty" example:"pb"`
	// Enable symmetry breaking between equal-capacity couriers.
	// example: true
	SymmetryBreak bool `json:"symmetry_break,omitempty" example:"true"`
	// Symmetry breaking mode when enabled: load or lex.
	// example: load
	SymmetryMode string `json:"symmetry_mode,omitempty" example:"load"`
	// Optimization strategy: auto, native or bisect.
	// example: auto
	Strategy string `json:"strategy,omitempty" example:"auto"`
	// Wall-clock budget in seconds, at most 86400; 0 uses the server default.
	// example: 60
	TimeBudgetSeconds int `json:"time_budget_seconds,omitempty" example:"60" minimum:"0" maximum:"86400"`
}

// SolveResponse is returned by POST /solve.
type SolveResponse struct {
	// Identifier of this solve, also present in server logs.
	// example: 2b1f5d2e-8c1a-4a53-9d0e-7e0f3c2b9a10
	ID string `json:"id" example:"2b1f5d2e-8c1a-4a53-9d0e-7e0f3c2b9a10"`
	// Backend that produced the result.
	// example: pb
	Backend string `json:"backend" example:"pb"`
	// Solve status: optimal, feasible, infeasible or unknown.
	// example: optimal
	Status string `json:"status" example:"optimal"`
	// Result in the batch output schema.
	Result Result `json:"result"`
	// Recomputed route length per courier.
	// example: [10,6]
	Distances []int `json:"distances,omitempty" example:"10,6"`
	// Number of engine calls made.
	// example: 4
	EngineCalls int `json:"engine_calls" example:"4"`
	// Elapsed wall-clock time in milliseconds.
	// example: 1520
	ElapsedMS int64 `json:"elapsed_ms" example:"1520"`
	// Non-fatal defects found while rebuilding or checking routes.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// BackendInfo describes one registered engine.
type BackendInfo struct {
	// example: pb
	Name string `json:"name" example:"pb"`
	// example: pseudo-boolean CDCL (crillab/gophersat) with native cost minimization
	Description string `json:"description" example:"pseudo-boolean CDCL (crillab/gophersat) with native cost minimization"`
	// Whether the engine minimizes the objective itself.
	// example: true
	NativeOptimize bool `json:"native_optimize" example:"true"`
	// Whether a running call can be stopped cooperatively.
	// example: true
	Interruptible bool `json:"interruptible" example:"true"`
}

// BackendsResponse wraps the list returned by GET /backends.
type BackendsResponse struct {
	Backends []BackendInfo `json:"backends"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Registered backend names.
	// example: ["sat","pb","cp"]
	Backends []string `json:"backends" example:"sat,pb,cp"`
	// Solves currently holding an in-flight slot.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum concurrent solves.
	// example: 1
	MaxConcurrent int `json:"max_concurrent" example:"1"`
	// Callers admitted to the queue, including in-flight ones.
	// example: 2
	QueueLen int `json:"queue_len" example:"2"`
	// Maximum queued callers before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Completed solves since start.
	// example: 12
	SolvesTotal uint64 `json:"solves_total" example:"12"`
	// Engine workers left running after ignoring an interrupt.
	// example: 0
	AbandonedWorkers uint64 `json:"abandoned_workers" example:"0"`
	// Default wall-clock budget in seconds.
	// example: 300
	TimeBudgetSeconds int `json:"time_budget_seconds" example:"300"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
