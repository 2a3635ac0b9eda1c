package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithHeaders(t *testing.T) {
	static := http.Header{}
	static.Add("Strict-Transport-Security", "max-age=31536000")
	static.Add("X-Custom", "one")
	static.Add("X-Custom", "two")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	WithHeaders(static)(inner).ServeHTTP(rec, req)

	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000" {
		t.Errorf("Expected the configured header on the response, got %q", got)
	}

	if got := rec.Header().Values("X-Custom"); len(got) != 2 {
		t.Errorf("Expected both configured values to survive, got %v", got)
	}

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected the handler's own headers to be kept, got %q", got)
	}
}
