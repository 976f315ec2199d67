package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"starsystem-server/internal/shared/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	c, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestRecordOperation(t *testing.T) {
	c := newTestCollector(t)

	c.RecordOperation("add_planet", nil)
	c.RecordOperation("add_planet", nil)
	c.RecordOperation("add_planet", errors.Conflictf("position already taken"))
	c.RecordOperation("route", errors.NotFoundf("no body"))

	if got := testutil.ToFloat64(c.Operations.WithLabelValues("add_planet", "ok")); got != 2 {
		t.Errorf("add_planet ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Operations.WithLabelValues("add_planet", "conflict")); got != 1 {
		t.Errorf("add_planet conflict = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Operations.WithLabelValues("route", "not_found")); got != 1 {
		t.Errorf("route not_found = %v, want 1", got)
	}
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	c := newTestCollector(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/systems/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := c.Middleware(mux)

	for _, path := range []string{"/api/systems/a", "/api/systems/b"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET /api/systems/{id}", "GET", "418")); got != 2 {
		t.Errorf("requests for pattern = %v, want 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := newTestCollector(t)
	c.SetSessions(3)
	c.RecordOperation("create_system", nil)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, want := range []string{"starsystem_sessions 3", `starsystem_operations_total{operation="create_system",outcome="ok"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("second New on the same registry succeeded")
	}
}
