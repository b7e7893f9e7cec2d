package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrapeMetrics(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddleware_ExposesHTTPFamilies(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}

	body := scrapeMetrics(t)
	for _, family := range []string{
		"mcpsolve_http_requests_total",
		"mcpsolve_http_request_duration_seconds",
		"mcpsolve_http_inflight_requests",
	} {
		if !strings.Contains(body, family) {
			t.Errorf("missing %s in /metrics", family)
		}
	}
	if got := testutil.ToFloat64(httpInflight.WithLabelValues(http.MethodGet)); got != 0 {
		t.Fatalf("inflight gauge should return to 0, got %v", got)
	}
}

func TestIncrementBackpressure(t *testing.T) {
	busy := backpressureTotal.WithLabelValues("too_busy")
	before := testutil.ToFloat64(busy)
	IncrementBackpressure("too_busy")
	IncrementBackpressure("too_busy")
	if got := testutil.ToFloat64(busy); got != before+2 {
		t.Fatalf("too_busy = %v, want %v", got, before+2)
	}

	blank := backpressureTotal.WithLabelValues("unspecified")
	before = testutil.ToFloat64(blank)
	IncrementBackpressure("")
	if got := testutil.ToFloat64(blank); got != before+1 {
		t.Fatalf("unspecified = %v, want %v", got, before+1)
	}
}

func TestObserveSolve_CountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(httpSolveOutcomes.WithLabelValues("pb", "optimal"))
	observeSolve("pb", "optimal", 512)
	if got := testutil.ToFloat64(httpSolveOutcomes.WithLabelValues("pb", "optimal")); got != before+1 {
		t.Fatalf("outcome counter = %v, want %v", got, before+1)
	}

	unknown := testutil.ToFloat64(httpSolveOutcomes.WithLabelValues("unknown", "400"))
	observeSolve("", "400", -1)
	if got := testutil.ToFloat64(httpSolveOutcomes.WithLabelValues("unknown", "400")); got != unknown+1 {
		t.Fatalf("empty backend should map to unknown, got %v", got)
	}
}
