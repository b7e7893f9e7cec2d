package solver

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mcpsolve/internal/encoding"
	"mcpsolve/internal/instance"
)

// sampleInstance: two couriers of capacity 10, three items of size 5. The
// optimum (8) splits items {0,1} and {2}.
func sampleInstance(t *testing.T) *instance.Instance {
	t.Helper()
	in, err := instance.New("sample", []int{10, 10}, []int{5, 5, 5}, [][]int{
		{0, 3, 4, 2},
		{3, 0, 5, 3},
		{4, 5, 0, 4},
		{2, 3, 4, 0},
	})
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return in
}

// wideInstance: three couriers, two items; best is one item per courier.
func wideInstance(t *testing.T) *instance.Instance {
	t.Helper()
	in, err := instance.New("wide", []int{5, 5, 5}, []int{1, 1}, [][]int{
		{0, 4, 1},
		{4, 0, 1},
		{1, 1, 0},
	})
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return in
}

// nonMetricInstance: one courier carrying both items. The cycle
// depot -> 0 -> 1 -> depot costs 3 while every direct round trip costs 101.
func nonMetricInstance(t *testing.T) *instance.Instance {
	t.Helper()
	in, err := instance.New("nonmetric", []int{2}, []int{1, 1}, [][]int{
		{0, 1, 100},
		{100, 0, 1},
		{1, 100, 0},
	})
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return in
}

// seededInstance places the depot and n items on a 20x20 grid with
// Manhattan distances. Capacities are loose enough that any two couriers
// can carry everything.
func seededInstance(t *testing.T, seed int64, m, n int) *instance.Instance {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	xs := make([]int, n+1)
	ys := make([]int, n+1)
	for i := range xs {
		xs[i], ys[i] = r.Intn(20), r.Intn(20)
	}
	sizes := make([]int, n)
	total := 0
	for j := range sizes {
		sizes[j] = 1 + r.Intn(4)
		total += sizes[j]
	}
	caps := make([]int, m)
	for c := range caps {
		caps[c] = total/2 + 1
	}
	dist := make([][]int, n+1)
	for i := range dist {
		dist[i] = make([]int, n+1)
		for j := range dist[i] {
			dist[i][j] = absInt(xs[i]-xs[j]) + absInt(ys[i]-ys[j])
		}
	}
	in, err := instance.New(fmt.Sprintf("seed%d", seed), caps, sizes, dist)
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return in
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// oracleBackend answers feasibility probes from a known optimal route set:
// a probe is feasible iff its bound admits the optimum.
type oracleBackend struct {
	inst   *instance.Instance
	routes [][]int
	opt    int
	below  Status // status reported for bounds under the optimum
	starts atomic.Int32
	native bool
	// detached makes Minimize return like a search that outlived its call
	detached bool
	failErr  error
}

func (o *oracleBackend) Name() string        { return "oracle" }
func (o *oracleBackend) Description() string { return "test oracle" }
func (o *oracleBackend) Capabilities() Capabilities {
	return Capabilities{NativeOptimize: o.native, Interruptible: true}
}

func (o *oracleBackend) Start(sys *encoding.System) (Session, error) {
	o.starts.Add(1)
	return &oracleSession{o: o, sys: sys}, nil
}

type oracleSession struct {
	o   *oracleBackend
	sys *encoding.System
}

func (s *oracleSession) Interrupt()   {}
func (s *oracleSession) Close() error { return nil }

func (s *oracleSession) model() []bool {
	values, err := encoding.Encode(s.o.inst, encoding.Options{}).Assignment(s.o.routes)
	if err != nil {
		panic(err)
	}
	return values
}

func (s *oracleSession) Check(ctx context.Context) (Outcome, error) {
	if s.o.failErr != nil {
		return Outcome{}, s.o.failErr
	}
	bound := -1
	for _, c := range s.sys.Linears {
		if strings.HasPrefix(c.Tag, "bound[") {
			bound = c.RHS
		}
	}
	if bound < 0 || bound >= s.o.opt {
		return Outcome{Status: StatusFeasible, Values: s.model()}, nil
	}
	return Outcome{Status: s.o.below}, nil
}

func (s *oracleSession) Minimize(ctx context.Context, lb, ub int) (Outcome, error) {
	if s.o.detached {
		return Outcome{Status: StatusFeasible, Values: s.model(), Objective: s.o.opt, Detached: true}, nil
	}
	return Outcome{Status: StatusOptimal, Values: s.model(), Objective: s.o.opt}, nil
}

// stuckBackend blocks every call until release is closed, ignoring both
// Interrupt and context cancellation.
type stuckBackend struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func newStuckBackend(t *testing.T) *stuckBackend {
	t.Helper()
	b := &stuckBackend{release: make(chan struct{}), started: make(chan struct{})}
	t.Cleanup(func() { close(b.release) })
	return b
}

func (b *stuckBackend) Name() string               { return "stuck" }
func (b *stuckBackend) Description() string        { return "never returns" }
func (b *stuckBackend) Capabilities() Capabilities { return Capabilities{} }
func (b *stuckBackend) Start(*encoding.System) (Session, error) {
	return stuckSession{b: b}, nil
}

type stuckSession struct{ b *stuckBackend }

func (s stuckSession) Interrupt()   {}
func (s stuckSession) Close() error { return nil }
func (s stuckSession) Check(context.Context) (Outcome, error) {
	s.b.once.Do(func() { close(s.b.started) })
	<-s.b.release
	return Outcome{Status: StatusUnknown}, nil
}
func (s stuckSession) Minimize(ctx context.Context, lb, ub int) (Outcome, error) {
	return s.Check(ctx)
}

// panicBackend panics inside the engine call.
type panicBackend struct{}

func (panicBackend) Name() string               { return "panic" }
func (panicBackend) Description() string        { return "panics" }
func (panicBackend) Capabilities() Capabilities { return Capabilities{} }
func (panicBackend) Start(*encoding.System) (Session, error) {
	return panicSession{}, nil
}

type panicSession struct{}

func (panicSession) Interrupt()   {}
func (panicSession) Close() error { return nil }
func (panicSession) Check(context.Context) (Outcome, error) {
	panic("engine exploded")
}
func (panicSession) Minimize(context.Context, int, int) (Outcome, error) {
	panic("engine exploded")
}

// interruptibleHandle records Interrupt calls and unblocks waiters.
type interruptibleHandle struct {
	once sync.Once
	ch   chan struct{}
}

func newInterruptibleHandle() *interruptibleHandle {
	return &interruptibleHandle{ch: make(chan struct{})}
}

func (h *interruptibleHandle) Interrupt() { h.once.Do(func() { close(h.ch) }) }

// testCtx returns a context with a generous timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)
	return c
}
