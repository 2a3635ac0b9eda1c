package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	testLog "github.com/sirupsen/logrus/hooks/test"

	"github.com/mailvet/mailvet/cmd/web/config"
	"github.com/mailvet/mailvet/cmd/web/mvhttp"
)

func Test_writeErrorJSONResponse(t *testing.T) {
	t.Run("unable to write", func(t *testing.T) {
		logger, hook := testLog.NewNullLogger()
		writer := &brokenResponseWriter{ResponseWriter: httptest.NewRecorder()}
		writer.writeErr = fmt.Errorf("boop")
		writeErrorJSONResponse(logger, writer, &mvhttp.ExtractResponse{})

		if hook.LastEntry().Message != "Failed to write response" {
			t.Errorf("Expected an error log")
		}
	})
}

func Test_headersToHTTPHeaders(t *testing.T) {
	h := headersToHTTPHeaders(config.Headers{
		"Strict-Transport-Security": "max-age=31536000",
	})

	if got := h.Get("Strict-Transport-Security"); got != "max-age=31536000" {
		t.Errorf("Expected the header to be set, got %q", got)
	}
}

func Test_newHashAlgorithm(t *testing.T) {
	if _, err := newHashAlgorithm(""); err == nil {
		t.Error("Expected an empty key to be rejected")
	}

	h, err := newHashAlgorithm("secret")
	if err != nil {
		t.Fatal(err)
	}

	_, _ = h.Write([]byte("john"))
	a := h.Sum(nil)

	h.Reset()
	_, _ = h.Write([]byte("john"))
	b := h.Sum(nil)

	if string(a) != string(b) {
		t.Error("Expected the hash to be deterministic")
	}
}

type brokenResponseWriter struct {
	http.ResponseWriter
	writeErr error
}

func (b *brokenResponseWriter) Write(bytes []byte) (int, error) {
	if b.writeErr == nil {
		return b.ResponseWriter.Write(bytes)
	}

	return len(bytes), b.writeErr
}
