package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/metrics"
)

func TestStatusRecorderForwardsFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec}

	var w http.ResponseWriter = sr
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusRecorder must implement http.Flusher")
	}
	_, _ = sr.Write([]byte("data: {}\n\n"))
	flusher.Flush()
	if !rec.Flushed {
		t.Fatal("expected flush to reach the underlying writer")
	}
	if sr.code() != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", sr.code())
	}
}

func TestLoggingWritesRequestLines(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Level: logger.ParseLevel("info"), Output: &buf})
	handler := RequestID(logg)(Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/menu", nil))

	out := buf.String()
	if !strings.Contains(out, "request.start") || !strings.Contains(out, "request.complete") {
		t.Fatalf("missing request log lines: %s", out)
	}
	if !strings.Contains(out, `"status":418`) {
		t.Fatalf("expected status in log: %s", out)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Patch("/api/admin/v1/orders/{orderId}/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/"+id+"/status", nil))
	}

	n, err := testutil.GatherAndCount(reg, "afrifood_http_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one label set for the route, got %d", n)
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
