package solver

import (
	"context"
	"fmt"
	"time"
)

// Verdict tells how a supervised call ended.
type Verdict int

const (
	// VerdictCompleted: the call returned before the deadline.
	VerdictCompleted Verdict = iota
	// VerdictInterrupted: the call returned within the grace period after an interrupt.
	VerdictInterrupted
	// VerdictAbandoned: the call ignored the interrupt; its worker was left running.
	VerdictAbandoned
)

func (v Verdict) String() string {
	switch v {
	case VerdictCompleted:
		return "completed"
	case VerdictInterrupted:
		return "interrupted"
	default:
		return "abandoned"
	}
}

// Work is one blocking engine call. It receives a publish func to hand over
// its interrupt handle as soon as one exists.
type Work func(ctx context.Context, publish func(Interrupter)) (Outcome, error)

// Supervisor bounds the wall-clock time of a blocking call.
type Supervisor struct {
	Grace time.Duration
	// OnAbandon runs when a worker is left behind.
	OnAbandon func()
}

type workResult struct {
	out Outcome
	err error
}

// Run executes work on a single worker goroutine and waits at most budget
// for it. On deadline (or ctx cancellation) it cancels the worker context,
// interrupts the published handle, and waits Grace more before giving up
// with an Unknown outcome. Panics inside work become errors.
func (sv Supervisor) Run(ctx context.Context, budget time.Duration, work Work) (Outcome, Verdict, error) {
	results := make(chan workResult, 1)
	handles := make(chan Interrupter, 1)
	wctx, cancel := context.WithCancel(ctx)

	publish := func(h Interrupter) {
		select {
		case handles <- h:
		default:
		}
	}
	go func() {
		var r workResult
		defer func() {
			if p := recover(); p != nil {
				r = workResult{err: fmt.Errorf("panic: %v", p)}
			}
			results <- r
		}()
		r.out, r.err = work(wctx, publish)
	}()

	if budget < 0 {
		budget = 0
	}
	deadline := time.NewTimer(budget)
	defer deadline.Stop()
	select {
	case r := <-results:
		cancel()
		return r.out, VerdictCompleted, r.err
	case <-deadline.C:
	case <-ctx.Done():
	}

	cancel()
	select {
	case h := <-handles:
		h.Interrupt()
	default:
	}
	grace := time.NewTimer(sv.Grace)
	defer grace.Stop()
	for {
		select {
		case r := <-results:
			return r.out, VerdictInterrupted, r.err
		case h := <-handles:
			// published after the deadline
			h.Interrupt()
		case <-grace.C:
			if sv.OnAbandon != nil {
				sv.OnAbandon()
			}
			return Outcome{Status: StatusUnknown}, VerdictAbandoned, nil
		}
	}
}
