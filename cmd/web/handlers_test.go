package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dynom/TySug/finder"
	testLog "github.com/sirupsen/logrus/hooks/test"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/cmd/web/mvhttp"
	"github.com/mailvet/mailvet/cmd/web/services"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

const testMaxBodySize = 1024

func newTestCheckSvc(t *testing.T) *services.CheckSvc {
	t.Helper()

	hitList := cache.New(sha256.New(), time.Minute)
	myFinder, err := finder.New([]string{"example.org"}, finder.WithAlgorithm(finder.NewJaroWinklerDefaults()))
	if err != nil {
		t.Fatalf("Test setup failed, %s", err)
	}

	check := func(ctx context.Context, req validator.Request) validator.Result {
		r := validator.Result{
			Email:       strings.TrimSpace(req.Email),
			ValidFormat: validator.IsValidFormat(req.Email),
		}

		if r.ValidFormat {
			if req.CheckMX {
				r.HasMX = types.True
			}
			if req.CheckDomain {
				r.DomainExists = types.True
			}
		}

		r.Status = validator.Classify(r, req)
		return r
	}

	logger, _ := testLog.NewNullLogger()
	svc := services.NewCheckService(hitList, myFinder, check, logger)
	return &svc
}

func TestNewCheckHandler(t *testing.T) {
	logger, _ := testLog.NewNullLogger()

	validRequestBody, err := json.Marshal(mvhttp.CheckRequest{Email: "john@example.org"})
	if err != nil {
		t.Fatalf("Test setup failed, %s", err)
	}

	tests := []struct {
		name           string
		requestBody    io.Reader
		wantStatusCode int
	}{
		{
			name:           "correct POST body",
			requestBody:    bytes.NewReader(validRequestBody),
			wantStatusCode: 200,
		},
		{
			name:           "malformed POST body",
			requestBody:    strings.NewReader("burp"),
			wantStatusCode: 400,
		},
		{
			name:           "nil POST body",
			requestBody:    nil,
			wantStatusCode: 400,
		},
		{
			name:           "too large POST body",
			requestBody:    strings.NewReader(strings.Repeat(".", testMaxBodySize+1)),
			wantStatusCode: 400,
		},
		{
			name:           "bad JSON",
			requestBody:    bytes.NewReader(validRequestBody[0 : len(validRequestBody)-1]),
			wantStatusCode: 400,
		},
	}

	handler := NewCheckHandler(logger, newTestCheckSvc(t), testMaxBodySize, true, true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/check", tt.requestBody)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Expected status code %d, got %d (body %q)", tt.wantStatusCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewCheckHandlerResponseShape(t *testing.T) {
	logger, _ := testLog.NewNullLogger()
	handler := NewCheckHandler(logger, newTestCheckSvc(t), testMaxBodySize, true, true)

	body, _ := json.Marshal(mvhttp.CheckRequest{Email: "john@example.org"})
	req := httptest.NewRequest("POST", "/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	var response mvhttp.CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unable to parse response %q: %v", rec.Body.String(), err)
	}

	if response.Email != "john@example.org" {
		t.Errorf("Unexpected email %q", response.Email)
	}

	if !response.ValidFormat {
		t.Error("Expected a passing format check")
	}

	if response.Status != types.StatusValid {
		t.Errorf("Expected a valid verdict, got %s", response.Status)
	}
}

func TestNewCheckHandlerConfiguredProbes(t *testing.T) {
	logger, _ := testLog.NewNullLogger()

	// With the MX probe disabled in the configuration, the signal stays unknown even when the
	// client doesn't ask to skip it
	handler := NewCheckHandler(logger, newTestCheckSvc(t), testMaxBodySize, false, true)

	body, _ := json.Marshal(mvhttp.CheckRequest{Email: "john@example.org"})
	req := httptest.NewRequest("POST", "/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Expected status code 200, got %d (body %q)", rec.Code, rec.Body.String())
	}

	var response mvhttp.CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unable to parse response %q: %v", rec.Body.String(), err)
	}

	if response.HasMX != types.Unknown {
		t.Errorf("Expected the MX signal to remain unknown, got %s", response.HasMX)
	}

	if response.DomainExists != types.True {
		t.Errorf("Expected the domain signal to be set, got %s", response.DomainExists)
	}
}

func TestNewExtractHandler(t *testing.T) {
	logger, _ := testLog.NewNullLogger()
	handler := NewExtractHandler(logger, testMaxBodySize)

	body, _ := json.Marshal(mvhttp.ExtractRequest{
		Text: "Contact john@example.org or jane@example.org, or john@example.org again.",
	})

	req := httptest.NewRequest("POST", "/extract", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Expected status code 200, got %d (body %q)", rec.Code, rec.Body.String())
	}

	var response mvhttp.ExtractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}

	want := []string{"jane@example.org", "john@example.org"}
	if len(response.Emails) != len(want) {
		t.Fatalf("Expected %d addresses, got %v", len(want), response.Emails)
	}

	for i, e := range want {
		if response.Emails[i] != e {
			t.Errorf("Expected %q at position %d, got %q", e, i, response.Emails[i])
		}
	}
}

func TestNewHealthHandler(t *testing.T) {
	logger, _ := testLog.NewNullLogger()
	handler := NewHealthHandler(logger)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != 200 || rec.Body.String() != "OK" {
		t.Errorf("Expected a 200/OK response, got %d %q", rec.Code, rec.Body.String())
	}
}
