package solver

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTimeBudget    = 300 * time.Second
	defaultGrace         = 2 * time.Second
	defaultMaxConcurrent = 1
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// Config encapsulates all tunables for Solver construction.
type Config struct {
	// Backends overrides the registered engines; nil registers sat, pb and cp.
	Backends []Backend
	// TimeBudget applies when SolveOptions.TimeBudget is unset.
	TimeBudget time.Duration
	// Grace is how long an interrupted engine call may take to return.
	Grace         time.Duration
	MaxConcurrent int
	MaxQueueDepth int
	MaxWait       time.Duration
	Logger        *zerolog.Logger
	Publisher     EventPublisher
}

// NewWithConfig constructs a Solver from Config.
func NewWithConfig(cfg Config) *Solver {
	s := &Solver{
		backends:   make(map[string]Backend),
		timeBudget: cfg.TimeBudget,
		grace:      cfg.Grace,
		publisher:  cfg.Publisher,
		startTime:  time.Now(),
	}
	if s.timeBudget <= 0 {
		s.timeBudget = defaultTimeBudget
	}
	if s.grace <= 0 {
		s.grace = defaultGrace
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	} else {
		s.log = zerolog.Nop()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	maxQueue := cfg.MaxQueueDepth
	if maxQueue <= 0 {
		maxQueue = defaultMaxQueueDepth
	}
	s.maxWait = cfg.MaxWait
	if s.maxWait <= 0 {
		s.maxWait = defaultMaxWait
	}
	s.queueCh = make(chan struct{}, maxQueue)
	s.slotCh = make(chan struct{}, maxConcurrent)

	backends := cfg.Backends
	if backends == nil {
		backends = DefaultBackends()
	}
	for _, b := range backends {
		s.backends[b.Name()] = b
		s.order = append(s.order, b.Name())
	}
	return s
}

// New constructs a Solver with package defaults.
func New() *Solver { return NewWithConfig(Config{}) }
