package solver

import (
	"time"

	"mcpsolve/pkg/types"
)

// Status builds a status response for /status.
func (s *Solver) Status() types.StatusResponse {
	now := time.Now()
	return types.StatusResponse{
		Backends:          s.BackendNames(),
		Inflight:          len(s.slotCh),
		MaxConcurrent:     cap(s.slotCh),
		QueueLen:          len(s.queueCh),
		MaxQueueDepth:     cap(s.queueCh),
		SolvesTotal:       s.solvesTotal.Load(),
		AbandonedWorkers:  s.abandonedTotal.Load(),
		TimeBudgetSeconds: int(s.timeBudget / time.Second),
		UptimeSeconds:     int64(now.Sub(s.startTime).Seconds()),
		ServerTimeUnix:    now.Unix(),
	}
}

// Ready reports whether at least one backend is registered.
func (s *Solver) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.backends) > 0
}
