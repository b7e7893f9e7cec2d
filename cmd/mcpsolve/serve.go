package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcpsolve/internal/config"
	"mcpsolve/internal/httpapi"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		defaultBackend string
		maxBody        int64
		solveTimeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API",
		Example: "  mcpsolve serve --addr :8080 --backends pb,cp",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			cfg, err := g.load(cmd, func(c *config.Config) {
				if f.Changed("addr") {
					c.Addr, _ = f.GetString("addr")
				}
				if f.Changed("backends") {
					v, _ := f.GetString("backends")
					c.Backends = splitCSV(v)
				}
				if f.Changed("time-budget") {
					c.TimeBudgetSeconds, _ = f.GetInt("time-budget")
				}
				if f.Changed("max-concurrent") {
					c.MaxConcurrent, _ = f.GetInt("max-concurrent")
				}
				if f.Changed("cors-origins") {
					v, _ := f.GetString("cors-origins")
					c.CORSEnabled = true
					c.CORSAllowedOrigins = splitCSV(v)
				}
			})
			if err != nil {
				return err
			}
			s, err := newSolver(cfg, g.log, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpapi.SetLogger(g.log)
			httpapi.SetBaseContext(ctx)
			if defaultBackend == "" {
				defaultBackend = cfg.Backends[0]
			}
			methods := cfg.CORSAllowedMethods
			if len(methods) == 0 {
				methods = []string{"GET", "POST", "OPTIONS"}
			}
			headers := cfg.CORSAllowedHeaders
			if len(headers) == 0 {
				headers = []string{"Content-Type", "X-Log-Level"}
			}
			httpapi.Configure(httpapi.Options{
				MaxBodyBytes:       maxBody,
				SolveTimeout:       solveTimeout,
				DefaultBackend:     defaultBackend,
				CORSEnabled:        cfg.CORSEnabled,
				CORSAllowedOrigins: cfg.CORSAllowedOrigins,
				CORSAllowedMethods: methods,
				CORSAllowedHeaders: headers,
			})

			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(s), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				g.log.Info().Str("addr", cfg.Addr).Strs("backends", s.BackendNames()).Msg("mcpsolve listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			g.log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				g.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().String("addr", config.DefaultAddr, "HTTP listen address")
	cmd.Flags().String("backends", "", "Comma-separated backends to register (default all)")
	cmd.Flags().StringVar(&defaultBackend, "default-backend", "", "Backend used when a request names none (default first registered)")
	cmd.Flags().Int64Var(&maxBody, "max-body-bytes", httpapi.DefaultMaxBodyBytes, "Largest accepted POST /solve body")
	cmd.Flags().DurationVar(&solveTimeout, "solve-timeout", 0, "Per-request cap on /solve on top of the time budget (0 disables)")
	cmd.Flags().Int("time-budget", config.DefaultTimeBudgetSeconds, "Default wall-clock budget per solve in seconds")
	cmd.Flags().Int("max-concurrent", config.DefaultMaxConcurrent, "Concurrent solves before requests queue")
	cmd.Flags().String("cors-origins", "", "Enable CORS for these comma-separated origins")
	return cmd
}
