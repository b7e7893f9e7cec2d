package solver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"mcpsolve/internal/instance"
	"mcpsolve/pkg/types"
)

// Solver owns the backend registry and runs solves under admission control.
// It is safe for concurrent use.
type Solver struct {
	mu       sync.RWMutex
	backends map[string]Backend
	order    []string

	timeBudget time.Duration
	grace      time.Duration
	maxWait    time.Duration
	queueCh    chan struct{}
	slotCh     chan struct{}

	log       zerolog.Logger
	publisher EventPublisher
	startTime time.Time

	solvesTotal    atomic.Uint64
	abandonedTotal atomic.Uint64
}

// Register adds or replaces a backend.
func (s *Solver) Register(b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.backends[b.Name()]; !ok {
		s.order = append(s.order, b.Name())
	}
	s.backends[b.Name()] = b
}

// Backend looks up a backend by name.
func (s *Solver) Backend(name string) (Backend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.backends[name]
	return b, ok
}

// BackendNames returns registered names in registration order.
func (s *Solver) BackendNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Backends describes every registered backend.
func (s *Solver) Backends() []types.BackendInfo {
	names := s.BackendNames()
	out := make([]types.BackendInfo, 0, len(names))
	for _, n := range names {
		b, ok := s.Backend(n)
		if !ok {
			continue
		}
		caps := b.Capabilities()
		out = append(out, types.BackendInfo{
			Name:           b.Name(),
			Description:    b.Description(),
			NativeOptimize: caps.NativeOptimize,
			Interruptible:  caps.Interruptible,
		})
	}
	return out
}

// TimeBudget returns the default per-solve budget.
func (s *Solver) TimeBudget() time.Duration { return s.timeBudget }

// Solve runs one instance on one backend. Engine failures, timeouts and
// malformed witnesses degrade the returned Solution; the error is reserved for
// rejected options (unknown backend, unsupported strategy) and admission
// failures (too busy, canceled while queued).
func (s *Solver) Solve(ctx context.Context, in *instance.Instance, opts SolveOptions) (Solution, error) {
	b, ok := s.Backend(opts.Backend)
	if !ok {
		return Solution{}, ErrUnknownBackend(opts.Backend)
	}
	strategy, err := resolveStrategy(b, opts.Strategy)
	if err != nil {
		return Solution{}, err
	}
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = s.timeBudget
	}

	release, err := s.admit(ctx, b.Name())
	if err != nil {
		return Solution{}, err
	}
	defer release()

	log := s.log.With().
		Str("instance", in.Name).
		Str("backend", b.Name()).
		Bool("symbreak", opts.SymmetryBreak).
		Str("strategy", string(strategy)).
		Logger()
	d := &driver{
		log: log,
		pub: s.publisher,
		sup: Supervisor{Grace: s.grace, OnAbandon: func() {
			s.abandonedTotal.Add(1)
			abandonedWorkers.Inc()
		}},
		backend:  b,
		inst:     in,
		opts:     opts,
		strategy: strategy,
	}
	sol := d.run(ctx)

	s.solvesTotal.Add(1)
	solvesTotal.WithLabelValues(b.Name(), sol.Status.String()).Inc()
	solveDuration.WithLabelValues(b.Name()).Observe(sol.Elapsed.Seconds())
	return sol, nil
}

func resolveStrategy(b Backend, st Strategy) (Strategy, error) {
	native := b.Capabilities().NativeOptimize
	switch st {
	case "", StrategyAuto:
		if native {
			return StrategyNative, nil
		}
		return StrategyBisect, nil
	case StrategyNative:
		if !native {
			return "", invalidOptionsError{msg: fmt.Sprintf("backend %s has no native optimization", b.Name())}
		}
		return StrategyNative, nil
	case StrategyBisect:
		return StrategyBisect, nil
	}
	return "", invalidOptionsError{msg: fmt.Sprintf("unknown strategy %q", st)}
}
