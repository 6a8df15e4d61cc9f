package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"singil/internal/portal/memory"
	"singil/internal/report"
	"singil/internal/services"
	"singil/internal/session"
	"singil/internal/worker"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.Seeded(time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))
	srv := NewServer(":0", Deps{
		Reports:       services.NewReportService(store, nil),
		Approvals:     services.NewApprovalService(store, store, store, store),
		Sections:      store,
		Stats:         store,
		Notifications: store,
		Auth:          store,
		Notifier:      worker.NewNotifier(store, store, nil, nil, time.Minute, nil),
		Sessions:      session.NewMemoryStore(),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got status %d", path, rec.Code)
		}
	}
}

func TestReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/market", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)

	if got := body["grand_total"].(float64); got != 225 {
		t.Errorf("grand_total = %v, want 225", got)
	}
	groups := body["groups"].([]any)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	trend := body["trend"].([]any)
	if len(trend) != 12 {
		t.Fatalf("trend points = %d, want 12", len(trend))
	}
	aug := trend[7].(map[string]any)
	if aug["month"] != "August" || aug["total"].(float64) != 225 {
		t.Errorf("August trend = %v, want 225", aug)
	}
	if body["page_subtotal"].(float64) != 225 {
		t.Errorf("page_subtotal = %v, want 225 on a single page", body["page_subtotal"])
	}
}

func TestReportEndpointRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		target string
	}{
		{"unknown department", "/api/reports/parking"},
		{"lonely start date", "/api/reports/market?start_date=2026-08-01"},
		{"malformed date", "/api/reports/market?start_date=08/01/2026&end_date=08/31/2026"},
		{"inverted range", "/api/reports/market?start_date=2026-08-31&end_date=2026-08-01"},
		{"zero page", "/api/reports/market?page=0"},
		{"bad group", "/api/reports/market?group=color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] == "" || body["data"] != nil {
				t.Errorf("want error envelope with empty data, got %v", body)
			}
		})
	}
}

func TestFilterChangeResetsPage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/market?page=2&page_size=1", nil)
	body := decodeBody(t, rec)
	if got := body["page"].(float64); got != 2 {
		t.Fatalf("page = %v, want 2", got)
	}

	// Same department, new range: the paginator must land back on page 1.
	rec = doRequest(t, srv, http.MethodGet,
		"/api/reports/market?page_size=1&start_date=2026-08-01&end_date=2026-08-31", nil)
	body = decodeBody(t, rec)
	if got := body["page"].(float64); got != 1 {
		t.Errorf("page after filter change = %v, want 1", got)
	}
}

func TestCombinedReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/reports/combined", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["department"] != "combined" {
		t.Errorf("department = %v, want combined", body["department"])
	}
	if got := body["grand_total"].(float64); got != 225 {
		t.Errorf("grand_total = %v, want 225", got)
	}
}

func TestTrendEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/trend/market?year=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	trend := body["trend"].([]any)
	if len(trend) != 12 {
		t.Fatalf("trend points = %d, want 12", len(trend))
	}
	feb := trend[1].(map[string]any)
	if feb["total"].(float64) != 0 {
		t.Errorf("February total = %v, want 0", feb["total"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/trend/market?year=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad year: status = %d, want 400", rec.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/sections/available-stalls", nil)
	body := decodeBody(t, rec)
	sections := body["sections"].([]any)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard/stats", nil)
	body = decodeBody(t, rec)
	if body["pending_approvals"].(float64) != 2 {
		t.Errorf("pending_approvals = %v, want 2", body["pending_approvals"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard/collector-totals", nil)
	body = decodeBody(t, rec)
	totals := body["collector_totals"].([]any)
	if len(totals) != 2 {
		t.Fatalf("collector totals = %d, want 2", len(totals))
	}
}

func TestNotificationFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/notifications", nil)
	body := decodeBody(t, rec)
	if body["unread_count"].(float64) != 2 {
		t.Fatalf("unread_count = %v, want 2", body["unread_count"])
	}
	first := body["notifications"].([]any)[0].(map[string]any)
	if first["target"] == "" {
		t.Errorf("notification target missing: %v", first)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/notifications/2/read", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/notifications", nil)
	body = decodeBody(t, rec)
	if body["unread_count"].(float64) != 1 {
		t.Errorf("unread_count after mark = %v, want 1", body["unread_count"])
	}
}

func TestApprovalDecisionRefetchesNotifications(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/approvals/vendor-applications/3",
		strings.NewReader(`{"approve":true}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if _, ok := body["notifications"]; !ok {
		t.Fatalf("want refetched notifications, got %v", body)
	}
	if got := store.Decisions(); len(got) != 1 {
		t.Errorf("decisions recorded = %v, want one", got)
	}
}

func TestApprovalStatusRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/approvals/incharge/4",
		strings.NewReader(`{}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRenewalFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/renewals", nil)
	body := decodeBody(t, rec)
	renewals := body["renewals"].([]any)
	if len(renewals) != 1 {
		t.Fatalf("renewals = %d, want 1", len(renewals))
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/renewals/1",
		strings.NewReader(`{"approve":true}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	resolved := body["renewals"].([]any)[0].(map[string]any)
	if resolved["status"] != "approved" {
		t.Errorf("status = %v, want approved", resolved["status"])
	}
}

func TestExportDownload(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/export/market.csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "market-report-all.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// Header, three detail rows, grand total.
	if len(lines) != 5 {
		t.Errorf("csv lines = %d, want 5: %q", len(lines), lines)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/export/market.pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pdf: status = %d, want 400", rec.Code)
	}
}

func TestExportQueueUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/export/market/queue", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestLoginStoresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"admin","password":"secret"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["role"] != "admin" {
		t.Errorf("role = %v, want admin", body["role"])
	}
	if _, leaked := body["token"]; leaked {
		t.Error("token must not appear in the login response")
	}

	sess, err := srv.sessions.Get(context.Background())
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.Token == "" {
		t.Error("stored session has no token")
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	if _, err := srv.sessions.Get(context.Background()); err == nil {
		t.Error("session should be cleared after logout")
	}
}

func TestReportServedFromCache(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/market", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// Swap the upstream data out; the second read still serves the
	// cached months instead of refetching.
	store.SetEnvelope("market", report.RawEnvelope{})
	rec = doRequest(t, srv, http.MethodGet, "/api/reports/market", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("cached read: status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["grand_total"].(float64) != 225 {
		t.Errorf("cached grand_total = %v, want 225", body["grand_total"])
	}
}

// Concurrent report reads share one paginator per department; alternating
// filters from many goroutines must never produce a torn response (a page
// number from one filter paired with a window from another) or trip the
// race detector.
func TestConcurrentReportRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				target := "/api/reports/market?page_size=1"
				if (g+i)%2 == 0 {
					target += "&group=vendor"
				}
				req := httptest.NewRequest(http.MethodGet, target, nil)
				rec := httptest.NewRecorder()
				srv.Handler.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("status %d: %s", rec.Code, rec.Body.String())
					return
				}
				var out map[string]any
				if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
					t.Errorf("decode: %v", err)
					return
				}
				page := int(out["page"].(float64))
				pages := int(out["pages"].(float64))
				if page < 1 || page > pages {
					t.Errorf("page %d out of range 1..%d", page, pages)
					return
				}
				if got := len(out["groups"].([]any)); got != 1 {
					t.Errorf("page_size=1 returned %d groups", got)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
