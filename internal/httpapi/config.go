package httpapi

import (
	"sync"
	"time"
)

const (
	// DefaultMaxBodyBytes fits instances with a few hundred items.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultBackend answers requests that name no backend.
	DefaultBackend = "pb"
)

// Options tunes the HTTP layer. The zero value is usable.
type Options struct {
	// MaxBodyBytes caps POST /solve bodies; non-positive means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// SolveTimeout bounds one /solve request on top of the solve's own
	// budget. Zero disables it.
	SolveTimeout time.Duration
	// DefaultBackend is used when a request omits one; empty means DefaultBackend.
	DefaultBackend string

	CORSEnabled        bool
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
}

func (o Options) normalized() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.SolveTimeout < 0 {
		o.SolveTimeout = 0
	}
	if o.DefaultBackend == "" {
		o.DefaultBackend = DefaultBackend
	}
	o.CORSAllowedOrigins = append([]string(nil), o.CORSAllowedOrigins...)
	o.CORSAllowedMethods = append([]string(nil), o.CORSAllowedMethods...)
	o.CORSAllowedHeaders = append([]string(nil), o.CORSAllowedHeaders...)
	return o
}

var (
	optsMu  sync.RWMutex
	current = Options{}.normalized()
)

// Configure replaces the HTTP options. Call it before NewMux; CORS is
// decided when the router is built.
func Configure(o Options) {
	n := o.normalized()
	optsMu.Lock()
	current = n
	optsMu.Unlock()
}

func options() Options {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return current
}
