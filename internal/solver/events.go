package solver

// Event is a solve lifecycle event: a name, the instance it concerns, and
// optional fields.
type Event struct {
	Name     string
	Instance string
	Fields   map[string]any
}

// Event names.
const (
	EventSolveStart      = "solve_start"
	EventProbeStart      = "probe_start"
	EventProbeDone       = "probe_done"
	EventWorkerAbandoned = "worker_abandoned"
	EventSolveDone       = "solve_done"
	EventInstanceDone    = "instance_done"
)

// EventPublisher receives events from the solver. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
