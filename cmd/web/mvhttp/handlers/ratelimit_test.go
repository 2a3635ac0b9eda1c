package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/juju/ratelimit"
)

func TestNewRateLimitHandlerPassesWithinBudget(t *testing.T) {
	b := ratelimit.NewBucketWithRate(100, 10)

	var called bool
	h := NewRateLimitHandler(testLogger(), b, time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", nil))

	if !called || rec.Code != http.StatusOK {
		t.Errorf("Expected the request to pass, called=%t status=%d", called, rec.Code)
	}
}

func TestNewRateLimitHandlerRejectsWhenExhausted(t *testing.T) {
	// A bucket that essentially never refills, drained up front
	b := ratelimit.NewBucketWithRate(0.0001, 1)
	b.Take(1)

	h := NewRateLimitHandler(testLogger(), b, time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("The wrapped handler shouldn't run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
}
