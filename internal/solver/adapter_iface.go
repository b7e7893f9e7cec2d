package solver

import (
	"context"

	"mcpsolve/internal/encoding"
)

// Interrupter is the cooperative stop handle of a running engine call.
// Interrupt must be safe to call from another goroutine and more than once.
type Interrupter interface {
	Interrupt()
}

// Capabilities describe what a backend offers beyond feasibility probes.
type Capabilities struct {
	// NativeOptimize means Session.Minimize is implemented.
	NativeOptimize bool
	// Interruptible means Interrupt stops the engine's search. Sessions
	// without it still return promptly but leave the search running.
	Interruptible bool
}

// Backend compiles constraint systems for one engine family.
type Backend interface {
	Name() string
	Description() string
	Capabilities() Capabilities
	// Start compiles sys into a session. The session owns everything it needs;
	// sys is not retained after Start returns.
	Start(sys *encoding.System) (Session, error)
}

// Session is one compiled system. Calls on a session are sequential.
type Session interface {
	Interrupter
	// Check looks for any model. It returns Feasible with Values, Infeasible,
	// or Unknown when stopped early. It must return when ctx is canceled.
	Check(ctx context.Context) (Outcome, error)
	// Minimize searches for a model minimizing the largest objective term sum,
	// knowing the optimum lies in [lb, ub].
	Minimize(ctx context.Context, lb, ub int) (Outcome, error)
	// Close releases any resources associated with the session.
	Close() error
}

// DefaultBackends returns the built-in engines in registration order.
func DefaultBackends() []Backend {
	return []Backend{NewGiniBackend(), NewGophersatBackend(), NewGokandoBackend()}
}

// watchInterrupt calls stop once when ctx is done or done is closed.
func watchInterrupt(ctx context.Context, done <-chan struct{}, stop func()) {
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
}
