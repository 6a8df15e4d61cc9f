// Package rest is the live adapter for the portal ports: a thin JSON
// client over the revenue portal's REST backend with bearer-token auth.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"singil/internal/core"
	"singil/internal/portal"
	"singil/internal/report"
)

// TokenSource supplies the bearer token attached to every authenticated
// request. The session store implements it; tests use a fixed string.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
}

// Interface conformance.
var (
	_ portal.ReportReader       = (*Client)(nil)
	_ portal.SectionReader      = (*Client)(nil)
	_ portal.StatsReader        = (*Client)(nil)
	_ portal.NotificationReader = (*Client)(nil)
	_ portal.NotificationMarker = (*Client)(nil)
	_ portal.Authenticator      = (*Client)(nil)
	_ portal.ApprovalWriter     = (*Client)(nil)
	_ portal.RenewalReader      = (*Client)(nil)
	_ portal.RenewalWriter      = (*Client)(nil)
)

// New creates a portal client for baseURL. A nil httpClient gets a pooled
// default with sane timeouts.
func New(baseURL string, tokens TokenSource, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing portal base URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse portal base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = newPooledHTTPClient()
	}
	return &Client{base: u, http: httpClient, tokens: tokens}, nil
}

// newPooledHTTPClient builds an HTTP client with connection pooling and
// explicit timeouts for the portal API.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// Report implements portal.ReportReader. Bounded ranges go out as
// start_date/end_date query parameters; unbounded ranges fetch the
// backend's default window (current year).
func (c *Client) Report(ctx context.Context, dept core.Department, r core.DateRange) (report.RawEnvelope, error) {
	var env report.RawEnvelope
	if !dept.Valid() {
		return env, core.ErrUnknownDepartment
	}
	if err := r.Validate(); err != nil {
		return env, fmt.Errorf("report range: %w", err)
	}
	q := url.Values{}
	if !r.IsZero() {
		q.Set("start_date", r.Start.Format("2006-01-02"))
		q.Set("end_date", r.End.Format("2006-01-02"))
	}
	if err := c.getJSON(ctx, "/reports/"+string(dept), q, &env); err != nil {
		return report.RawEnvelope{}, err
	}
	return env, nil
}

type sectionDTO struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	AvailableStallsCount int    `json:"available_stalls_count"`
}

func (c *Client) AvailableStalls(ctx context.Context) ([]core.Section, error) {
	var dtos []sectionDTO
	if err := c.getJSON(ctx, "/sections/available-stalls", nil, &dtos); err != nil {
		return nil, err
	}
	sections := make([]core.Section, 0, len(dtos))
	for _, d := range dtos {
		sections = append(sections, core.Section{
			ID:              d.ID,
			Name:            d.Name,
			AvailableStalls: d.AvailableStallsCount,
		})
	}
	return sections, nil
}

type statsDTO struct {
	TotalCollections  core.Money `json:"total_collections"`
	PendingApprovals  int        `json:"pending_approvals"`
	ActiveVendors     int        `json:"active_vendors"`
	OccupiedStalls    int        `json:"occupied_stalls"`
	AvailableStalls   int        `json:"available_stalls"`
	PendingRemittance core.Money `json:"pending_remittance"`
}

func (c *Client) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	var dto statsDTO
	if err := c.getJSON(ctx, "/admin/dashboard-stats", nil, &dto); err != nil {
		return core.DashboardStats{}, err
	}
	return core.DashboardStats{
		TotalCollections:  dto.TotalCollections,
		PendingApprovals:  dto.PendingApprovals,
		ActiveVendors:     dto.ActiveVendors,
		OccupiedStalls:    dto.OccupiedStalls,
		AvailableStalls:   dto.AvailableStalls,
		PendingRemittance: dto.PendingRemittance,
	}, nil
}

type collectorTotalDTO struct {
	CollectorID string     `json:"collector_id"`
	Collector   string     `json:"collector"`
	Department  string     `json:"department"`
	Total       core.Money `json:"total"`
}

func (c *Client) CollectorTotals(ctx context.Context) ([]core.CollectorTotal, error) {
	var dtos []collectorTotalDTO
	if err := c.getJSON(ctx, "/admin/collector-totals", nil, &dtos); err != nil {
		return nil, err
	}
	totals := make([]core.CollectorTotal, 0, len(dtos))
	for _, d := range dtos {
		dept, err := core.ParseDepartment(d.Department)
		if err != nil {
			dept = core.Department(d.Department)
		}
		totals = append(totals, core.CollectorTotal{
			CollectorID: d.CollectorID,
			Collector:   d.Collector,
			Department:  dept,
			Total:       d.Total,
		})
	}
	return totals, nil
}

type notificationDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

func (c *Client) Notifications(ctx context.Context) ([]core.Notification, error) {
	var dtos []notificationDTO
	if err := c.getJSON(ctx, "/admin/notifications", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Notification, 0, len(dtos))
	for _, d := range dtos {
		n := core.Notification{ID: d.ID, Title: d.Title, Body: d.Body, Read: d.Read}
		if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
			n.CreatedAt = t
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Client) MarkRead(ctx context.Context, id int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/admin/notifications/%d/read", id), nil, nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID          json.Number `json:"id"`
		Role        string      `json:"role"`
		CollectorID json.Number `json:"collector_id"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (core.AuthSession, error) {
	var resp loginResponse
	err := c.postJSON(ctx, "/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return core.AuthSession{}, err
	}
	sess := core.AuthSession{
		Token:       resp.Token,
		Role:        core.Role(resp.User.Role),
		UserID:      resp.User.ID.String(),
		CollectorID: resp.User.CollectorID.String(),
	}
	if sess.Token == "" {
		return core.AuthSession{}, errors.New("login response missing token")
	}
	if !sess.Role.Valid() {
		return core.AuthSession{}, fmt.Errorf("login response has unknown role %q", resp.User.Role)
	}
	return sess, nil
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (c *Client) ValidateVendorProfile(ctx context.Context, id int64, approve bool, reason string) error {
	return c.postJSON(ctx, fmt.Sprintf("/admin/vendor-profiles/%d/validate", id),
		decisionRequest{Approve: approve, Reason: reason}, nil)
}

func (c *Client) SetInchargeStatus(ctx context.Context, id int64, status string) error {
	return c.postJSON(ctx, fmt.Sprintf("/admin/incharge-profiles/%d/status", id),
		statusRequest{Status: status}, nil)
}

func (c *Client) SetStallChangeStatus(ctx context.Context, id int64, status string) error {
	return c.postJSON(ctx, fmt.Sprintf("/stall-change-requests/%d/status", id),
		statusRequest{Status: status}, nil)
}

func (c *Client) ResolveStallRemoval(ctx context.Context, id int64, approve bool, reason string) error {
	verb := "approve"
	if !approve {
		verb = "reject"
	}
	return c.postJSON(ctx, fmt.Sprintf("/admin/stall-removal-requests/%d/%s", id, verb),
		decisionRequest{Approve: approve, Reason: reason}, nil)
}

func (c *Client) ApproveRemittance(ctx context.Context, id int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/remittance/%d/approve", id), nil, nil)
}

type renewalDTO struct {
	ID          int64  `json:"id"`
	VendorName  string `json:"vendor_name"`
	StallNumber string `json:"stall_number"`
	Section     string `json:"section"`
	FiledAt     string `json:"filed_at"`
	Status      string `json:"status"`
}

func (c *Client) Renewals(ctx context.Context) ([]core.Renewal, error) {
	var dtos []renewalDTO
	if err := c.getJSON(ctx, "/market-registration/renewals", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Renewal, 0, len(dtos))
	for _, d := range dtos {
		r := core.Renewal{
			ID:          d.ID,
			VendorName:  d.VendorName,
			StallNumber: d.StallNumber,
			Section:     d.Section,
			Status:      d.Status,
		}
		if t, err := time.Parse(time.RFC3339, d.FiledAt); err == nil {
			r.FiledAt = t
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) ResolveRenewal(ctx context.Context, id int64, approve bool, reason string) error {
	verb := "approve"
	if !approve {
		verb = "reject"
	}
	return c.postJSON(ctx, fmt.Sprintf("/market-registration/%d/renewal/%s", id, verb),
		decisionRequest{Approve: approve, Reason: reason}, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("token source: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &portal.StatusError{Code: resp.StatusCode, URL: path}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
