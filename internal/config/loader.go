package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the CLI, the batch runner and the
// HTTP service. Zero values mean "unspecified"; call Defaults to fill them.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	InstancesDir string `json:"instances_dir" yaml:"instances_dir" toml:"instances_dir"`
	OutputDir    string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`

	Backends      []string `json:"backends" yaml:"backends" toml:"backends"`
	SymmetryBreak []bool   `json:"symmetry_break" yaml:"symmetry_break" toml:"symmetry_break"`
	SymmetryMode  string   `json:"symmetry_mode" yaml:"symmetry_mode" toml:"symmetry_mode"`
	Strategy      string   `json:"strategy" yaml:"strategy" toml:"strategy"`

	TimeBudgetSeconds int `json:"time_budget_seconds" yaml:"time_budget_seconds" toml:"time_budget_seconds"`
	GraceMS           int `json:"grace_ms" yaml:"grace_ms" toml:"grace_ms"`
	Parallel          int `json:"parallel" yaml:"parallel" toml:"parallel"`

	MaxConcurrent  int `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	MaxQueueDepth  int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSeconds int `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
}

// Default values.
const (
	DefaultAddr              = ":8080"
	DefaultInstancesDir      = "instances"
	DefaultOutputDir         = "res"
	DefaultTimeBudgetSeconds = 300
	DefaultGraceMS           = 2000
	DefaultParallel          = 1
	DefaultMaxConcurrent     = 1
	DefaultMaxQueueDepth     = 32
	DefaultMaxWaitSeconds    = 30
	DefaultLogLevel          = "info"
)

// DefaultBackends is every built-in engine family.
var DefaultBackends = []string{"cp", "pb", "sat"}

// Defaults returns a copy of c with unspecified fields filled in.
func (c Config) Defaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.InstancesDir == "" {
		c.InstancesDir = DefaultInstancesDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if len(c.Backends) == 0 {
		c.Backends = append([]string(nil), DefaultBackends...)
	}
	if len(c.SymmetryBreak) == 0 {
		c.SymmetryBreak = []bool{false, true}
	}
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = DefaultTimeBudgetSeconds
	}
	if c.GraceMS == 0 {
		c.GraceMS = DefaultGraceMS
	}
	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxQueueDepth == 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWaitSeconds == 0 {
		c.MaxWaitSeconds = DefaultMaxWaitSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}

// Validate rejects values that can never work. It expects Defaults to have run.
func (c Config) Validate() error {
	if c.TimeBudgetSeconds < 0 {
		return fmt.Errorf("time_budget_seconds must be positive, got %d", c.TimeBudgetSeconds)
	}
	if c.GraceMS < 0 {
		return fmt.Errorf("grace_ms must not be negative, got %d", c.GraceMS)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must be positive, got %d", c.Parallel)
	}
	if c.MaxConcurrent < 0 || c.MaxQueueDepth < 0 || c.MaxWaitSeconds < 0 {
		return fmt.Errorf("admission limits must not be negative")
	}
	seen := make(map[string]bool, len(c.Backends))
	for _, b := range c.Backends {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("empty backend name")
		}
		if seen[b] {
			return fmt.Errorf("backend %q listed twice", b)
		}
		seen[b] = true
	}
	switch strings.ToLower(c.SymmetryMode) {
	case "", "load", "lex", "none", "off":
	default:
		return fmt.Errorf("unknown symmetry_mode %q", c.SymmetryMode)
	}
	switch strings.ToLower(c.Strategy) {
	case "", "auto", "native", "bisect", "binary":
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	return nil
}

// TimeBudget is the per-solve wall-clock budget.
func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetSeconds) * time.Second
}

// Grace is how long an interrupted engine call may take to return.
func (c Config) Grace() time.Duration { return time.Duration(c.GraceMS) * time.Millisecond }

// MaxWait bounds the time a solve may wait for admission.
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitSeconds) * time.Second }

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
