package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"codeatlas/internal/analysis"
	"codeatlas/internal/config"
	"codeatlas/internal/logging"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "api/users.ts", `import { client } from '../db/client'

export async function GET(req) {
  return client.from('users').select('*')
}
`)
	writeFixture(t, root, "db/client.ts", "export const client = supabase.createClient(url, key)\n")

	cfg := config.DefaultConfig()
	store := analysis.NewStore(cfg, nil, logging.Discard())
	engine, err := analysis.NewEngine(store, &cfg.Graph, logging.Discard())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return NewServer("127.0.0.1:0", root, store, engine, logging.Discard())
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v\n%s", err, rec.Body.String())
	}
	return body
}

func scanFixture(t *testing.T, s *Server) {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/scan")
	if rec.Code != http.StatusOK {
		t.Fatalf("scan failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before scan = %d, want 503", rec.Code)
	}

	scanFixture(t, s)

	rec = doRequest(t, s, http.MethodGet, "/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("ready after scan = %d, want 200", rec.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/scan")
	if rec.Code != http.StatusOK {
		t.Fatalf("scan = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total_files"].(float64) != 2 {
		t.Errorf("unexpected total_files: %v", body["total_files"])
	}

	if rec := doRequest(t, s, http.MethodGet, "/scan"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /scan = %d, want 405", rec.Code)
	}

	if rec := doRequest(t, s, http.MethodPost, "/scan?subdir=../outside"); rec.Code != http.StatusBadRequest {
		t.Errorf("traversing subdir = %d, want 400", rec.Code)
	}
}

func TestQueriesBeforeScanReturnEmpty(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/stats", "/files", "/routes", "/search?q=x", "/graph?view=bogus"} {
		rec := doRequest(t, s, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s before scan = %d, want 200", path, rec.Code)
		}
	}

	body := decodeBody(t, doRequest(t, s, http.MethodGet, "/stats"))
	if body["total_files"].(float64) != 0 {
		t.Errorf("stats before scan should be zero: %v", body)
	}

	body = decodeBody(t, doRequest(t, s, http.MethodGet, "/files"))
	if body["total"].(float64) != 0 {
		t.Errorf("files before scan should be empty: %v", body)
	}

	body = decodeBody(t, doRequest(t, s, http.MethodGet, "/search?q=x"))
	if body["total"].(float64) != 0 {
		t.Errorf("search before scan should be empty: %v", body)
	}

	// Point lookups are the only pre-scan 404s.
	if rec := doRequest(t, s, http.MethodGet, "/files/api/users.ts"); rec.Code != http.StatusNotFound {
		t.Errorf("file lookup before scan = %d, want 404", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	scanFixture(t, s)

	rec := doRequest(t, s, http.MethodGet, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["total_files"].(float64) != 2 {
		t.Errorf("unexpected stats: %v", body)
	}
}

func TestFilesEndpoints(t *testing.T) {
	s := newTestServer(t)
	scanFixture(t, s)

	rec := doRequest(t, s, http.MethodGet, "/files?type=api_route")
	body := decodeBody(t, rec)
	if body["total"].(float64) != 1 {
		t.Errorf("type filter wrong: %v", body)
	}

	rec = doRequest(t, s, http.MethodGet, "/files?type=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/files/api/users.ts")
	if rec.Code != http.StatusOK {
		t.Fatalf("file detail = %d", rec.Code)
	}
	detail := decodeBody(t, rec)
	deps, _ := detail["depends_on"].([]interface{})
	if len(deps) != 1 {
		t.Errorf("expected 1 dependency, got %v", detail["depends_on"])
	}

	rec = doRequest(t, s, http.MethodGet, "/files/nope.ts")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file = %d, want 404", rec.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	s := newTestServer(t)
	scanFixture(t, s)

	rec := doRequest(t, s, http.MethodGet, "/graph?view=modules")
	if rec.Code != http.StatusOK {
		t.Fatalf("graph = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	nodes, _ := body["nodes"].([]interface{})
	if len(nodes) != 2 {
		t.Errorf("expected 2 module nodes, got %d", len(nodes))
	}

	// Unknown views are empty, not errors.
	rec = doRequest(t, s, http.MethodGet, "/graph?view=bogus")
	if rec.Code != http.StatusOK {
		t.Errorf("unknown view = %d, want 200", rec.Code)
	}
	body = decodeBody(t, rec)
	if nodes, _ := body["nodes"].([]interface{}); len(nodes) != 0 {
		t.Errorf("unknown view should be empty: %v", body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)
	scanFixture(t, s)

	rec := doRequest(t, s, http.MethodGet, "/search?q=users")
	if rec.Code != http.StatusOK {
		t.Fatalf("search = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	hits, _ := body["hits"].([]interface{})
	if len(hits) < 2 {
		t.Errorf("expected file and route hits, got %v", hits)
	}

	rec = doRequest(t, s, http.MethodGet, "/search?q=zzznothing")
	if rec.Code != http.StatusOK {
		t.Errorf("empty search = %d, want 200", rec.Code)
	}
	body = decodeBody(t, rec)
	if body["total"].(float64) != 0 {
		t.Errorf("expected zero total, got %v", body["total"])
	}

	rec = doRequest(t, s, http.MethodGet, "/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "fixed-id" {
		t.Error("existing request id not propagated")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/stats")
	if rec.Code != http.StatusOK {
		t.Errorf("preflight = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers missing")
	}
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("root = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["name"] != "Code Atlas HTTP API" {
		t.Errorf("unexpected root payload: %v", body)
	}

	if rec := doRequest(t, s, http.MethodGet, "/definitely-missing"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", rec.Code)
	}
}
