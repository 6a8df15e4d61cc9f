package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/market", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("request ID = %q, want req_ prefix", seen)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMetricsAccumulate(t *testing.T) {
	m := NewMiddleware(nil)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", got.TotalRequests)
	}
	if got.AverageResponseTime < 0 {
		t.Errorf("AverageResponseTime = %d", got.AverageResponseTime)
	}
}

func TestGetRequestIDOutsideRequest(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("bare context yielded %q", id)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b {
		t.Errorf("two IDs collided: %s", a)
	}
}
