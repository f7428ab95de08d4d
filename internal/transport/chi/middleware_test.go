package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/vecdash/internal/domain/report"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/vecdash/internal/logger"
)

func panicHandler() http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func TestRecoverer_APIReturnsJSON(t *testing.T) {
	h := Recoverer(zap.NewNop())(panicHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/search", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), string(CodeInternalError)) {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

type panickingSearcher struct{}

func (panickingSearcher) Search(context.Context, request.Request) (report.Report, error) {
	panic("searcher exploded")
}

func TestRouter_RecoveredPanicCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := NewServer(panickingSearcher{}, &mockHealth{}, Options{}, zap.New(core)).Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("X-Request-Id", "req-panic-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "req-panic-1" {
		t.Errorf("response X-Request-ID = %q, want req-panic-1", got)
	}

	entries := logs.FilterMessage("panic recovered").All()
	if len(entries) != 1 {
		t.Fatalf("expected one panic log line, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-panic-1" {
		t.Errorf("panic log request_id = %v, want req-panic-1", got)
	}
}

func TestRecoverer_DashboardReturnsText(t *testing.T) {
	h := Recoverer(zap.NewNop())(panicHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestWideEventMiddleware_LogsOneLinePerRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logpkg.FromContext(r.Context(), nil).Info("inside handler")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if !sawLogger {
		t.Fatal("handler not called")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	lines := logs.FilterMessage("http_request").All()
	if len(lines) != 1 {
		t.Fatalf("expected one canonical line, got %d", len(lines))
	}
	fields := lines[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/health" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["request_id"] == "" {
		t.Error("canonical line must carry request_id")
	}

	if logs.FilterMessage("inside handler").Len() != 1 {
		t.Error("handler must log through the request-scoped logger")
	}
}
