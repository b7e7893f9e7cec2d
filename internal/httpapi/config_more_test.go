package httpapi

import (
	"testing"
	"time"
)

func TestConfigure_NormalizesZeroValues(t *testing.T) {
	defer Configure(Options{})
	Configure(Options{MaxBodyBytes: -1, SolveTimeout: -time.Second})
	got := options()
	if got.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("MaxBodyBytes = %d, want %d", got.MaxBodyBytes, DefaultMaxBodyBytes)
	}
	if got.SolveTimeout != 0 {
		t.Fatalf("SolveTimeout = %v, want 0", got.SolveTimeout)
	}
	if got.DefaultBackend != DefaultBackend {
		t.Fatalf("DefaultBackend = %q, want %q", got.DefaultBackend, DefaultBackend)
	}
}

func TestConfigure_KeepsExplicitValues(t *testing.T) {
	defer Configure(Options{})
	origins := []string{"http://a.example"}
	Configure(Options{MaxBodyBytes: 1234, SolveTimeout: 3 * time.Second, DefaultBackend: "sat", CORSAllowedOrigins: origins})
	origins[0] = "mutated"

	got := options()
	if got.MaxBodyBytes != 1234 || got.SolveTimeout != 3*time.Second || got.DefaultBackend != "sat" {
		t.Fatalf("unexpected options: %+v", got)
	}
	if got.CORSAllowedOrigins[0] != "http://a.example" {
		t.Fatalf("origins aliased caller slice: %v", got.CORSAllowedOrigins)
	}
}
