package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpattn/klinik/internal/logging"

	"github.com/rs/zerolog"
)

func TestLoggerRecordsStatusAndAttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info", "json")

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	if !strings.Contains(out, "inside handler") || !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/healthz"`) {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestRecoveryReturns500(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info", "json")

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "kaboom") {
		t.Fatalf("expected panic to be logged, got %q", buf.String())
	}
}

func TestDataLoaderMiddlewareAttachesLoader(t *testing.T) {
	handler := DataLoaderMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ReferenceRangeLoaderFromContext(r.Context()) == nil {
			t.Fatalf("expected loader in context")
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if ReferenceRangeLoaderFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()) != nil {
		t.Fatalf("expected no loader outside middleware")
	}
}
