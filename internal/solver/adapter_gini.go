package solver

import (
	"context"
	"sync"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"mcpsolve/internal/encoding"
)

const giniPollInterval = 20 * time.Millisecond

// giniBackend lowers systems to CNF and probes them with gini. It has no
// objective support, so optimization goes through binary search.
type giniBackend struct{}

// NewGiniBackend returns the "sat" backend.
func NewGiniBackend() Backend { return giniBackend{} }

func (giniBackend) Name() string { return "sat" }

func (giniBackend) Description() string {
	return "CDCL SAT (go-air/gini); linear constraints lowered to CNF adder networks"
}

func (giniBackend) Capabilities() Capabilities {
	return Capabilities{NativeOptimize: false, Interruptible: true}
}

func (giniBackend) Start(sys *encoding.System) (Session, error) {
	g := gini.NewV(sys.NumVars())
	sys.ToCNF(func(cl encoding.Clause) {
		for _, l := range cl {
			g.Add(giniLit(l))
		}
		g.Add(0)
	})
	return &giniSession{g: g, nvars: sys.NumVars(), stop: make(chan struct{})}, nil
}

func giniLit(l encoding.Lit) z.Lit {
	if l.Positive() {
		return z.Var(l).Pos()
	}
	return z.Var(-l).Neg()
}

type giniSession struct {
	g     *gini.Gini
	nvars int
	once  sync.Once
	stop  chan struct{}
}

func (s *giniSession) Interrupt() { s.once.Do(func() { close(s.stop) }) }

func (s *giniSession) Check(ctx context.Context) (Outcome, error) {
	h := s.g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()
	res := 0
poll:
	for {
		if r, done := h.Test(); done {
			res = r
			break
		}
		select {
		case <-ctx.Done():
			res = h.Stop()
			break poll
		case <-s.stop:
			res = h.Stop()
			break poll
		case <-ticker.C:
		}
	}
	switch res {
	case 1:
		values := make([]bool, s.nvars+1)
		for v := 1; v <= s.nvars; v++ {
			values[v] = s.g.Value(z.Var(v).Pos())
		}
		return Outcome{Status: StatusFeasible, Values: values}, nil
	case -1:
		return Outcome{Status: StatusInfeasible}, nil
	default:
		return Outcome{Status: StatusUnknown}, nil
	}
}

func (s *giniSession) Minimize(context.Context, int, int) (Outcome, error) {
	return Outcome{}, errNativeUnsupported
}

func (s *giniSession) Close() error {
	s.Interrupt()
	return nil
}
