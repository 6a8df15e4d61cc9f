package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"singil/internal/core"
	"singil/internal/portal"
)

func TestReportQueryAndAuth(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"months":[{"month":"August","days":[{"day_label":"(Mon) Aug 3","details":[{"amount":"₱10.00"}]}]}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, StaticToken("tok-123"), srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	r := core.DateRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	env, err := c.Report(context.Background(), core.Market, r)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if gotPath != "/reports/market" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "end_date=2026-08-31&start_date=2026-08-01" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(env.Months) != 1 || env.Months[0].Days[0].Details[0].Amount != core.ParseAmount(10) {
		t.Errorf("envelope = %+v", env)
	}
}

func TestReportUnboundedRangeSendsNoDates(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"months":[]}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil, srv.Client())
	if _, err := c.Report(context.Background(), core.Wharf, core.DateRange{}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("unbounded range sent query %q", gotQuery)
	}
}

func TestStatusErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, StaticToken("stale"), srv.Client())
	_, err := c.Notifications(context.Background())
	var se *portal.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != 401 || !se.IsAuthError() {
		t.Errorf("status error = %+v", se)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"token":"abc","user":{"id":7,"role":"main_collector","collector_id":3}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil, srv.Client())
	sess, err := c.Login(context.Background(), "tess", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token != "abc" || sess.Role != core.RoleMainCollector || sess.UserID != "7" || sess.CollectorID != "3" {
		t.Errorf("session = %+v", sess)
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc","user":{"id":7,"role":"mayor"}}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil, srv.Client())
	if _, err := c.Login(context.Background(), "tess", "secret"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestApprovalVerbs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, StaticToken("t"), srv.Client())
	ctx := context.Background()
	if err := c.ResolveStallRemoval(ctx, 9, true, ""); err != nil {
		t.Fatal(err)
	}
	if err := c.ResolveStallRemoval(ctx, 9, false, "incomplete papers"); err != nil {
		t.Fatal(err)
	}
	if err := c.ApproveRemittance(ctx, 12); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"POST /admin/stall-removal-requests/9/approve",
		"POST /admin/stall-removal-requests/9/reject",
		"POST /remittance/12/approve",
	}
	if len(paths) != len(want) {
		t.Fatalf("calls = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, paths[i], want[i])
		}
	}
}
