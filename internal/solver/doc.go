// Package solver runs Multiple Courier Problem instances through pluggable
// engine backends and turns engine models into checked routes. It is
// structured into small files by concern:
//
//   - solver.go: Solver type, backend registry, Solve entry point.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: Status, Outcome, SolveOptions, Solution and its JSON result.
//   - errors.go: error types and helpers (IsTooBusy, IsUnknownBackend, ...).
//   - admission.go: bounded queue and in-flight slots for concurrent callers.
//   - adapter_iface.go: Backend/Session contracts implemented by engines.
//   - adapter_gini.go: "sat" backend (go-air/gini, feasibility only).
//   - adapter_gophersat.go: "pb" backend (crillab/gophersat, native optimization).
//   - adapter_gokando.go: "cp" backend (gitrdm/gokanlogic FD solver, native optimization).
//   - supervisor.go: wall-clock supervision of one blocking engine call.
//   - driver.go: native optimization and binary search over the objective bound.
//   - bounds.go: objective lower/upper bounds.
//   - status_report.go: Status snapshot for /status.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: Prometheus collectors.
//
// Every engine call builds fresh variables and constraints; no engine state is
// shared across calls. A call that ignores interruption past its grace period
// is abandoned and counted, never waited on.
package solver
