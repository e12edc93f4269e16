package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTraceMiddlewarePropagatesIncomingHeader(t *testing.T) {
	const incoming = "trace-incoming-123"
	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetTraceID(r); got != incoming {
			t.Fatalf("unexpected trace id in context: got %q want %q", got, incoming)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set(TraceHeader, incoming)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(TraceHeader); got != incoming {
		t.Fatalf("unexpected response trace id: got %q want %q", got, incoming)
	}
}

func TestTraceMiddlewareGeneratesWhenMissing(t *testing.T) {
	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetTraceID(r); got == "" {
			t.Fatal("expected generated trace id in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get(TraceHeader); got == "" {
		t.Fatal("expected generated trace id header")
	}
}

func TestLoggerMiddlewareRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	handler := TraceMiddleware(LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set(TraceHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP Request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Fatalf("unexpected status field: %v", fields["status"])
	}
	if fields["trace_id"] != "abc" {
		t.Fatalf("unexpected trace_id field: %v", fields["trace_id"])
	}
	if fields["path"] != "/register" {
		t.Fatalf("unexpected path field: %v", fields["path"])
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected unknown level to fail")
	}
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}
