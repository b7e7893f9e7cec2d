package solver

import (
	"slices"
	"sync"
)

// MemoryPublisher records events in arrival order for later inspection.
type MemoryPublisher struct {
	mu  sync.Mutex
	log []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, e)
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.log)
}

// Named filters the snapshot down to one event name.
func (p *MemoryPublisher) Named(name string) []Event {
	return slices.DeleteFunc(p.Events(), func(e Event) bool { return e.Name != name })
}
