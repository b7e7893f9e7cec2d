package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mcpsolve/internal/encoding"
	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
	"mcpsolve/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Backends() []types.BackendInfo
	Status() types.StatusResponse
	Solve(ctx context.Context, in *instance.Instance, opts solver.SolveOptions) (solver.Solution, error)
	Ready() bool
}

// NewMux builds the HTTP handler.
//
// @Summary      Solve a Multiple Courier Problem instance
// @Description  Solves one instance on one backend and returns the checked result.
// @Tags         solve
// @Accept       json
// @Produce      json
// @Param        request  body      types.SolveRequest  true  "Instance and options"
// @Success      200      {object}  types.SolveResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /solve [post]
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if o := options(); o.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.CORSAllowedOrigins,
			AllowedMethods: o.CORSAllowedMethods,
			AllowedHeaders: o.CORSAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/backends", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.BackendsResponse{Backends: svc.Backends()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Post("/solve", func(w http.ResponseWriter, r *http.Request) {
		handleSolve(svc, w, r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no backends"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func handleSolve(svc Service, w http.ResponseWriter, r *http.Request) {
	// Content-Type check
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	o := options()
	r.Body = http.MaxBytesReader(w, r.Body, o.MaxBodyBytes)
	var req types.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// oversized bodies land here too; report 400 without size details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in, err := buildInstance(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := solveOptions(req, o.DefaultBackend)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	id := requestID(r)
	if id == "" {
		id = uuid.NewString()
	}
	if lvl >= LevelInfo && zlog != nil {
		zlog.Info().Str("request_id", id).Str("instance", in.Name).Str("backend", opts.Backend).
			Int("m", in.M).Int("n", in.N).Msg("solve start")
	}

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if o.SolveTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, o.SolveTimeout)
		defer tcancel()
	}

	sol, err := svc.Solve(ctx, in, opts)
	if err != nil {
		// client went away; nobody reads the answer
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure("too_busy")
		}
		observeSolve(opts.Backend, strconv.Itoa(status), int(r.ContentLength))
		writeJSONError(w, status, err.Error())
		logSolveEnd(r, lvl, status, func(z *zerolog.Event) { z.Dur("dur", time.Since(start)) }, err)
		return
	}

	resp := types.SolveResponse{
		ID:          id,
		Backend:     sol.Backend,
		Status:      sol.Status.String(),
		Result:      sol.Result(),
		Distances:   sol.Distances,
		EngineCalls: sol.Probes,
		ElapsedMS:   sol.Elapsed.Milliseconds(),
		Diagnostics: sol.Diagnostics,
	}
	observeSolve(resp.Backend, resp.Status, int(r.ContentLength))
	writer := io.Writer(w)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(w, &loggingLineWriter{requestID: id})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(resp); err != nil {
		logSolveEnd(r, lvl, http.StatusInternalServerError, nil, err)
		return
	}
	logSolveEnd(r, lvl, http.StatusOK, func(z *zerolog.Event) {
		z.Dur("dur", time.Since(start)).Str("solve_status", resp.Status).Int("obj", resp.Result.Obj)
	}, nil)
}

func buildInstance(req types.SolveRequest) (*instance.Instance, error) {
	name := req.Name
	if name == "" {
		name = "request"
	}
	switch {
	case strings.TrimSpace(req.Instance) != "" && req.Data != nil:
		return nil, errors.New("set either instance or data, not both")
	case strings.TrimSpace(req.Instance) != "":
		return instance.Parse(strings.NewReader(req.Instance), name)
	case req.Data != nil:
		return instance.New(name, req.Data.Capacities, req.Data.Sizes, req.Data.Distances)
	}
	return nil, errors.New("instance is required")
}

// MaxTimeBudgetSeconds caps the per-request time budget.
const MaxTimeBudgetSeconds = 24 * 60 * 60

func solveOptions(req types.SolveRequest, fallbackBackend string) (solver.SolveOptions, error) {
	mode, err := encoding.ParseSymmetryMode(req.SymmetryMode)
	if err != nil {
		return solver.SolveOptions{}, err
	}
	strategy, err := solver.ParseStrategy(req.Strategy)
	if err != nil {
		return solver.SolveOptions{}, err
	}
	if req.TimeBudgetSeconds < 0 {
		return solver.SolveOptions{}, errors.New("time_budget_seconds must not be negative")
	}
	if req.TimeBudgetSeconds > MaxTimeBudgetSeconds {
		return solver.SolveOptions{}, errors.New("time_budget_seconds must not exceed " + strconv.Itoa(MaxTimeBudgetSeconds))
	}
	backend := req.Backend
	if backend == "" {
		backend = fallbackBackend
	}
	return solver.SolveOptions{
		Backend:       backend,
		SymmetryBreak: req.SymmetryBreak,
		SymmetryMode:  mode,
		Strategy:      strategy,
		TimeBudget:    time.Duration(req.TimeBudgetSeconds) * time.Second,
	}, nil
}
