package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mcpd/internal/registry"
	"mcpd/pkg/types"
)

type mockService struct {
	models []types.ModelDescriptor
	ready  bool

	lastModel     string
	lastOperation string
	lastParams    map[string]any
	env           types.Envelope
}

func (m *mockService) Models() []types.ModelDescriptor {
	return append([]types.ModelDescriptor(nil), m.models...)
}

func (m *mockService) Model(id string) (types.ModelDescriptor, error) {
	for _, d := range m.models {
		if d.ID == id {
			return d, nil
		}
	}
	return types.ModelDescriptor{}, registry.ErrModelNotFound(id)
}

func (m *mockService) Dispatch(ctx context.Context, modelID, operation string, params map[string]any) types.Envelope {
	m.lastModel, m.lastOperation, m.lastParams = modelID, operation, params
	return m.env
}

func (m *mockService) Ready() bool { return m.ready }

func newTestMux(env types.Envelope) (*mockService, http.Handler) {
	svc := &mockService{
		models: []types.ModelDescriptor{
			{ID: "git-analyzer", Name: "Git Analyzer", Capabilities: []types.Capability{types.CapGitAnalyze}},
			{ID: "filesystem", Name: "Filesystem", Capabilities: []types.Capability{types.CapFsList}},
		},
		ready: true,
		env:   env,
	}
	return svc, NewMux(svc)
}

func TestModelsHandler(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") { t.Fatalf("content-type=%s", ct) }
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	if len(body.Models) != 2 { t.Fatalf("models len=%d", len(body.Models)) }
	if body.Models[0].ID != "git-analyzer" { t.Fatalf("order not preserved: %+v", body.Models) }
}

func TestModelInfoHandler(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/filesystem", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	var desc types.ModelDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil { t.Fatalf("json: %v", err) }
	if desc.ID != "filesystem" { t.Fatalf("id=%q", desc.ID) }
}

func TestModelInfoUnknown404(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/nope", nil))
	if w.Code != http.StatusNotFound { t.Fatalf("status=%d", w.Code) }
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	if body.Error == "" { t.Fatalf("expected error body, got %s", w.Body.String()) }
}

func TestOperationPostReturnsEnvelope(t *testing.T) {
	svc, r := newTestMux(types.OK(map[string]any{"path": "."}))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/models/filesystem/list", bytes.NewBufferString(`{"path":"sub"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	var env types.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil { t.Fatalf("json: %v", err) }
	if !env.Success || env.Error != "" { t.Fatalf("envelope=%+v", env) }
	if svc.lastModel != "filesystem" || svc.lastOperation != "list" { t.Fatalf("dispatched %s/%s", svc.lastModel, svc.lastOperation) }
	if svc.lastParams["path"] != "sub" { t.Fatalf("params=%v", svc.lastParams) }
}

func TestOperationFailureStillHTTP200(t *testing.T) {
	_, r := newTestMux(types.Fail("model not found: ghost"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/models/ghost/list", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	var env types.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil { t.Fatalf("json: %v", err) }
	if env.Success || env.Error == "" || env.Data != nil { t.Fatalf("envelope=%+v", env) }
}

func TestOperationEmptyBodyAllowed(t *testing.T) {
	svc, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/models/filesystem/list", nil)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	if svc.lastOperation != "list" { t.Fatalf("operation=%q", svc.lastOperation) }
}

func TestOperationBadJSON400(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/models/filesystem/list", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest { t.Fatalf("status=%d", w.Code) }
}

func TestOperationUnsupportedMediaType(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/models/filesystem/list", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType { t.Fatalf("status=%d", w.Code) }
}

func TestOperationBodyTooLarge(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	big := bytes.Repeat([]byte("a"), int(maxBodyBytes)+10)
	req := httptest.NewRequest(http.MethodPost, "/v1/models/filesystem/list", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest { t.Fatalf("expected 400 for too-large body, got %d", w.Code) }
}

func TestOperationGetDispatchesEmptyParams(t *testing.T) {
	svc, r := newTestMux(types.OK(map[string]any{"status": "success"}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/prometheus/targets", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	if svc.lastModel != "prometheus" || svc.lastOperation != "targets" { t.Fatalf("dispatched %s/%s", svc.lastModel, svc.lastOperation) }
	if len(svc.lastParams) != 0 { t.Fatalf("params=%v", svc.lastParams) }
}

func TestOperationGetOnlyParameterlessOps(t *testing.T) {
	// Mutating operations must not be reachable by GET.
	for _, path := range []string{
		"/v1/models/filesystem/write",
		"/v1/models/git-analyzer/analyze",
		"/v1/models/prometheus/query",
	} {
		svc, r := newTestMux(types.OK(nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s: status=%d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "unknown route") {
			t.Fatalf("GET %s: body=%q", path, w.Body.String())
		}
		if svc.lastModel != "" || svc.lastOperation != "" {
			t.Fatalf("GET %s dispatched %s/%s", path, svc.lastModel, svc.lastOperation)
		}
	}
}

func TestUnknownRoute404(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound { t.Fatalf("status=%d", w.Code) }
	if !strings.Contains(w.Body.String(), "unknown route") { t.Fatalf("body=%q", w.Body.String()) }
}

func TestReadyz(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
}

func TestReadyz_NotReady(t *testing.T) {
	svc, r := newTestMux(types.OK(nil))
	svc.ready = false
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable { t.Fatalf("status=%d", w.Code) }
	if !strings.Contains(w.Body.String(), "loading") { t.Fatalf("body=%q", w.Body.String()) }
}

func TestHealthz(t *testing.T) {
	_, r := newTestMux(types.OK(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
}
