package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcpsolve/internal/config"
	"mcpsolve/internal/solver"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "mcpsolve",
		Short:         "Multiple Courier Problem solver (SAT, pseudo-boolean and CP engines)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", envStr("MCPSOLVE_LOG_LEVEL", ""), "Log level: debug|info|warn|error (defaults MCPSOLVE_LOG_LEVEL or config)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format: console|json")

	root.AddCommand(newSolveCmd(g), newBatchCmd(g), newServeCmd(g), newBackendsCmd(g))
	return root
}

// load reads the config file, applies explicitly set flags through apply,
// fills defaults and validates. It also builds the logger.
func (g *globals) load(cmd *cobra.Command, apply func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if g.configPath != "" {
		c, err := config.Load(g.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if apply != nil {
		apply(&cfg)
	}
	cfg = cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	log, err := newLogger(cfg.LogLevel, g.logFormat, cmd.ErrOrStderr())
	if err != nil {
		return cfg, err
	}
	g.log = log
	return cfg, nil
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// newSolver registers the configured backends in config order.
func newSolver(cfg config.Config, log zerolog.Logger, pub solver.EventPublisher) (*solver.Solver, error) {
	available := map[string]solver.Backend{}
	for _, b := range solver.DefaultBackends() {
		available[b.Name()] = b
	}
	backends := make([]solver.Backend, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		b, ok := available[name]
		if !ok {
			return nil, solver.ErrUnknownBackend(name)
		}
		backends = append(backends, b)
	}
	return solver.NewWithConfig(solver.Config{
		Backends:      backends,
		TimeBudget:    cfg.TimeBudget(),
		Grace:         cfg.Grace(),
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       cfg.MaxWait(),
		Logger:        &log,
		Publisher:     pub,
	}), nil
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
