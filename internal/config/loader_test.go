package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\ninstances_dir: /tmp/inst\nbackends: [sat, pb]\nsymmetry_break: [true]\ntime_budget_seconds: 60\nparallel: 4\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.InstancesDir != "/tmp/inst" || len(cfg.Backends) != 2 || cfg.Backends[1] != "pb" ||
		len(cfg.SymmetryBreak) != 1 || !cfg.SymmetryBreak[0] || cfg.TimeBudgetSeconds != 60 || cfg.Parallel != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","output_dir":"/out","strategy":"bisect","grace_ms":500,"max_concurrent":2}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.OutputDir != "/out" || cfg.Strategy != "bisect" || cfg.GraceMS != 500 || cfg.MaxConcurrent != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nsymmetry_mode=\"lex\"\nbackends=[\"cp\"]\nlog_level=\"debug\"\ncors_enabled=true\ncors_allowed_origins=[\"*\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.SymmetryMode != "lex" || len(cfg.Backends) != 1 || cfg.LogLevel != "debug" ||
		!cfg.CORSEnabled || len(cfg.CORSAllowedOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Config{}.Defaults()
	if cfg.Addr != DefaultAddr || cfg.TimeBudget() != 300*time.Second || cfg.Grace() != 2*time.Second ||
		cfg.MaxWait() != 30*time.Second || cfg.Parallel != 1 || cfg.MaxQueueDepth != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Backends) != 3 || len(cfg.SymmetryBreak) != 2 || cfg.SymmetryBreak[0] || !cfg.SymmetryBreak[1] {
		t.Fatalf("unexpected default matrix: %+v", cfg)
	}
	// explicit values survive
	cfg = Config{Parallel: 8, Backends: []string{"sat"}}.Defaults()
	if cfg.Parallel != 8 || len(cfg.Backends) != 1 {
		t.Fatalf("defaults overwrote explicit values: %+v", cfg)
	}
	// the package-level slice must not be aliased
	cfg.Backends[0] = "x"
	if (Config{}).Defaults().Backends[0] != "cp" {
		t.Fatalf("DefaultBackends was mutated")
	}
}

func TestValidate(t *testing.T) {
	ok := Config{}.Defaults()
	if err := ok.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := []Config{
		func() Config { c := ok; c.TimeBudgetSeconds = -1; return c }(),
		func() Config { c := ok; c.Parallel = -2; return c }(),
		func() Config { c := ok; c.Backends = []string{"sat", "sat"}; return c }(),
		func() Config { c := ok; c.Backends = []string{" "}; return c }(),
		func() Config { c := ok; c.SymmetryMode = "mirror"; return c }(),
		func() Config { c := ok; c.Strategy = "greedy"; return c }(),
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}
}
