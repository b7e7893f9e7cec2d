package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
	"mcpsolve/pkg/types"
)

const sampleDat = "2\n3\n10 10\n5 5 5\n0 3 4 2\n3 0 5 3\n4 5 0 4\n2 3 4 0\n"

type mockService struct {
	backends []types.BackendInfo
	status   types.StatusResponse
	ready    bool
	solveErr error
	got      solver.SolveOptions
	gotInst  *instance.Instance
}

func (m *mockService) Backends() []types.BackendInfo {
	return append([]types.BackendInfo(nil), m.backends...)
}
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Solve(ctx context.Context, in *instance.Instance, opts solver.SolveOptions) (solver.Solution, error) {
	m.got = opts
	m.gotInst = in
	if m.solveErr != nil {
		return solver.Solution{}, m.solveErr
	}
	return solver.Solution{
		Instance:   in.Name,
		Backend:    opts.Backend,
		Status:     solver.StatusOptimal,
		Routes:     [][]int{{0, 1}, {2}},
		Objective:  8,
		Distances:  []int{8, 8},
		Elapsed:    1200 * time.Millisecond,
		TimeBudget: 300 * time.Second,
		Probes:     3,
	}, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postSolve(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func solveBody(t *testing.T, req types.SolveRequest) string {
	t.Helper()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestBackendsHandler(t *testing.T) {
	svc := &mockService{backends: []types.BackendInfo{{Name: "sat"}, {Name: "pb", NativeOptimize: true}}}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodGet, "/backends", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.BackendsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Backends) != 2 || !body.Backends[1].NativeOptimize {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{MaxConcurrent: 2, AbandonedWorkers: 1}}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.MaxConcurrent != 2 || body.AbandonedWorkers != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	svc := &mockService{ready: true}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	svc := &mockService{ready: false}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no backends") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestSolveReturnsResult(t *testing.T) {
	svc := &mockService{}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{
		Instance: sampleDat, Name: "inst01", Backend: "sat", SymmetryBreak: true, SymmetryMode: "lex", TimeBudgetSeconds: 5,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.SolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.ID == "" || resp.Status != "optimal" || resp.Backend != "sat" || resp.EngineCalls != 3 || resp.ElapsedMS != 1200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Result.Optimal || resp.Result.Obj != 8 || resp.Result.Time != 1 {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
	if len(resp.Result.Sol) != 2 || resp.Result.Sol[0][0] != 1 || resp.Result.Sol[1][0] != 3 {
		t.Fatalf("expected 1-based routes, got %v", resp.Result.Sol)
	}
	if svc.gotInst.Name != "inst01" || svc.gotInst.M != 2 || svc.gotInst.N != 3 {
		t.Fatalf("unexpected instance: %+v", svc.gotInst)
	}
	if !svc.got.SymmetryBreak || svc.got.SymmetryMode.String() != "lex" || svc.got.TimeBudget != 5*time.Second {
		t.Fatalf("unexpected options: %+v", svc.got)
	}
}

func TestSolveStructuredData(t *testing.T) {
	svc := &mockService{}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{Data: &types.InstanceData{
		Capacities: []int{4},
		Sizes:      []int{1, 2},
		Distances:  [][]int{{0, 1, 2}, {1, 0, 3}, {2, 3, 0}},
	}}))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.got.Backend != DefaultBackend {
		t.Fatalf("expected default backend, got %q", svc.got.Backend)
	}
	if svc.gotInst.N != 2 || svc.gotInst.Name != "request" {
		t.Fatalf("unexpected instance: %+v", svc.gotInst)
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad json":        "not-json",
		"no instance":     `{"backend":"sat"}`,
		"both forms":      solveBody(t, types.SolveRequest{Instance: sampleDat, Data: &types.InstanceData{Capacities: []int{1}}}),
		"malformed file":  `{"instance":"2\nx\n"}`,
		"invalid data":    solveBody(t, types.SolveRequest{Data: &types.InstanceData{Capacities: []int{0}, Distances: [][]int{{0}}}}),
		"bad symmetry":    solveBody(t, types.SolveRequest{Instance: sampleDat, SymmetryMode: "mirror"}),
		"bad strategy":    solveBody(t, types.SolveRequest{Instance: sampleDat, Strategy: "greedy"}),
		"negative budget": solveBody(t, types.SolveRequest{Instance: sampleDat, TimeBudgetSeconds: -1}),
		"budget over cap": solveBody(t, types.SolveRequest{Instance: sampleDat, TimeBudgetSeconds: MaxTimeBudgetSeconds + 1}),
	}
	for name, body := range cases {
		w := postSolve(t, NewMux(&mockService{}), body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", name, w.Code, w.Body.String())
		}
		var e types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Code != http.StatusBadRequest {
			t.Fatalf("%s: unexpected error payload %q", name, w.Body.String())
		}
	}
}

func TestSolveAcceptsBudgetAtCap(t *testing.T) {
	svc := &mockService{}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{Instance: sampleDat, TimeBudgetSeconds: MaxTimeBudgetSeconds}))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.got.TimeBudget != 24*time.Hour {
		t.Fatalf("budget=%v", svc.got.TimeBudget)
	}
}

func TestSolveHTTPErrorMapping(t *testing.T) {
	svc := &mockService{solveErr: mockHTTPError{msg: "maintenance", code: http.StatusServiceUnavailable}}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{Instance: sampleDat}))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestSolveGenericErrorMaps500(t *testing.T) {
	svc := &mockService{solveErr: io.EOF}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{Instance: sampleDat}))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestSolveUnsupportedMediaType(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestSolveBodyTooLarge(t *testing.T) {
	defer Configure(Options{})
	Configure(Options{MaxBodyBytes: 64})

	svc := &mockService{}
	w := postSolve(t, NewMux(svc), solveBody(t, types.SolveRequest{Instance: sampleDat}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
	if svc.gotInst != nil {
		t.Fatal("service must not be called for an oversized body")
	}
}

func TestHealthz(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
