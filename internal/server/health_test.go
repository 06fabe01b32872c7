package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var checks map[string]struct {
		Status string `json:"status"`
	}
	json.NewDecoder(w.Body).Decode(&checks)

	if checks["sqlite"].Status != "ok" {
		t.Errorf("expected sqlite ok, got %q", checks["sqlite"].Status)
	}
	// No redis client configured in tests, so the check is absent.
	if _, present := checks["redis"]; present {
		t.Error("redis check should be absent without a client")
	}
}

func TestOpenAPISpecServed(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var spec struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}
	if spec.OpenAPI == "" {
		t.Error("expected openapi version")
	}

	// Parameterized paths drop out of the spec entirely when their
	// placeholders are not declared, so check each one explicitly.
	want := []string{
		"/api/records",
		"/api/records/{recordID}",
		"/api/stats/{gameID}",
		"/api/follow/{targetUserID}",
		"/api/leaderboard/{gameID}",
		"/api/leaderboard/{gameID}/rank",
		"/api/admin/games/{gameID}",
	}
	for _, path := range want {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("expected path %s in spec", path)
		}
	}
}
