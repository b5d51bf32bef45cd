package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	var sawContextLogger bool
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawContextLogger = WithContext(r.Context(), nil) != nil
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/files?path=/tmp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !sawContextLogger {
		t.Error("expected request-scoped logger in context")
	}
	requestID := rec.Header().Get(RequestIDHeader)
	if requestID == "" {
		t.Fatal("expected generated request ID header")
	}

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusNotFound) {
		t.Errorf("expected status 404 in log, got %v", fields["status"])
	}
	if fields["size"] != int64(len("missing")) {
		t.Errorf("expected size %d in log, got %v", len("missing"), fields["size"])
	}
	if fields["path"] != "/api/files" {
		t.Errorf("expected path /api/files in log, got %v", fields["path"])
	}
	if fields["request_id"] != requestID {
		t.Errorf("expected request_id %s in log, got %v", requestID, fields["request_id"])
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	handler := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request ID to be echoed, got %q", got)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := New(Config{Level: "debug", Format: format, OutputPath: "stderr"})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", format, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("expected debug level enabled for %s logger", format)
		}
	}

	logger, err := New(Config{Level: "nonsense"})
	if err != nil {
		t.Fatalf("New with bad level failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected fallback to info level")
	}
}
