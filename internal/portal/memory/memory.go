// Package memory is a deterministic in-memory implementation of the
// portal ports, used by tests and the "memory" backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"singil/internal/core"
	"singil/internal/portal"
	"singil/internal/report"
)

type Store struct {
	mu            sync.Mutex
	envelopes     map[core.Department]report.RawEnvelope
	sections      []core.Section
	stats         core.DashboardStats
	totals        []core.CollectorTotal
	notifications []core.Notification
	renewals      []core.Renewal
	decisions     []string
}

// Interface conformance.
var (
	_ portal.ReportReader       = (*Store)(nil)
	_ portal.SectionReader      = (*Store)(nil)
	_ portal.StatsReader        = (*Store)(nil)
	_ portal.NotificationReader = (*Store)(nil)
	_ portal.NotificationMarker = (*Store)(nil)
	_ portal.Authenticator      = (*Store)(nil)
	_ portal.ApprovalWriter     = (*Store)(nil)
	_ portal.RenewalReader      = (*Store)(nil)
	_ portal.RenewalWriter      = (*Store)(nil)
)

func New() *Store {
	return &Store{envelopes: make(map[core.Department]report.RawEnvelope)}
}

// Seeded returns a store pre-filled with a small, plausible dataset so
// the memory backend renders something out of the box.
func Seeded(now time.Time) *Store {
	s := New()
	label := fmt.Sprintf("(%s) %s %d", now.Weekday().String()[:3], now.Month().String()[:3], now.Day())
	s.SetEnvelope(core.Market, report.RawEnvelope{Months: []report.RawMonth{{
		Month: now.Month().String(),
		Year:  now.Year(),
		Days: []report.RawDay{{
			DayLabel: label,
			Details: []report.RawDetail{
				{VendorName: "Dela Cruz", StallNumber: "5", Section: "Dry Goods", PaymentType: "daily", Collector: "Cruz", ReceivedBy: "Reyes", Amount: core.ParseAmount(100)},
				{VendorName: "Dela Cruz", StallNumber: "6", Section: "Dry Goods", PaymentType: "daily", Collector: "Cruz", ReceivedBy: "Reyes", Amount: core.ParseAmount(50)},
				{VendorName: "Bautista", StallNumber: "7", Section: "Wet Market", PaymentType: "monthly", Collector: "Santos", ReceivedBy: "Reyes", Amount: core.ParseAmount(75)},
			},
		}},
	}}})
	s.sections = []core.Section{
		{ID: 1, Name: "Dry Goods", AvailableStalls: 4},
		{ID: 2, Name: "Wet Market", AvailableStalls: 0},
	}
	s.stats = core.DashboardStats{
		TotalCollections: core.ParseAmount(225),
		PendingApprovals: 2,
		ActiveVendors:    2,
		OccupiedStalls:   3,
		AvailableStalls:  4,
	}
	s.totals = []core.CollectorTotal{
		{CollectorID: "1", Collector: "Cruz", Department: core.Market, Total: core.ParseAmount(150)},
		{CollectorID: "2", Collector: "Santos", Department: core.Market, Total: core.ParseAmount(75)},
	}
	s.notifications = []core.Notification{
		{ID: 1, Title: "New vendor application", Body: "Bautista filed for stall 7", CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Title: "Remittance for approval", Body: "Cruz remitted ₱150.00", CreatedAt: now.Add(-10 * time.Minute)},
	}
	s.renewals = []core.Renewal{
		{ID: 1, VendorName: "Dela Cruz", StallNumber: "5", Section: "Dry Goods", FiledAt: now.Add(-48 * time.Hour), Status: "pending"},
	}
	return s
}

// SetEnvelope installs a raw envelope for a department.
func (s *Store) SetEnvelope(dept core.Department, env report.RawEnvelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes[dept] = env
}

func (s *Store) Report(_ context.Context, dept core.Department, r core.DateRange) (report.RawEnvelope, error) {
	if err := r.Validate(); err != nil {
		return report.RawEnvelope{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envelopes[dept], nil
}

func (s *Store) AvailableStalls(context.Context) ([]core.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Section(nil), s.sections...), nil
}

func (s *Store) DashboardStats(context.Context) (core.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

func (s *Store) CollectorTotals(context.Context) ([]core.CollectorTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CollectorTotal(nil), s.totals...), nil
}

func (s *Store) Notifications(context.Context) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Notification(nil), s.notifications...), nil
}

// AddNotification appends a notification; tests drive the poller with it.
func (s *Store) AddNotification(n core.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *Store) MarkRead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %d not found", id)
}

func (s *Store) Login(_ context.Context, username, password string) (core.AuthSession, error) {
	if username == "" || password == "" {
		return core.AuthSession{}, fmt.Errorf("missing credentials")
	}
	return core.AuthSession{Token: "mem-token", Role: core.RoleAdmin, UserID: "1"}, nil
}

func (s *Store) record(action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, action)
}

// Decisions returns the mutations recorded so far, in call order.
func (s *Store) Decisions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.decisions...)
}

func (s *Store) ValidateVendorProfile(_ context.Context, id int64, approve bool, reason string) error {
	s.record(fmt.Sprintf("vendor-profile:%d:%v", id, approve))
	return nil
}

func (s *Store) SetInchargeStatus(_ context.Context, id int64, status string) error {
	s.record(fmt.Sprintf("incharge:%d:%s", id, status))
	return nil
}

func (s *Store) SetStallChangeStatus(_ context.Context, id int64, status string) error {
	s.record(fmt.Sprintf("stall-change:%d:%s", id, status))
	return nil
}

func (s *Store) ResolveStallRemoval(_ context.Context, id int64, approve bool, reason string) error {
	s.record(fmt.Sprintf("stall-removal:%d:%v", id, approve))
	return nil
}

func (s *Store) ApproveRemittance(_ context.Context, id int64) error {
	s.record(fmt.Sprintf("remittance:%d:true", id))
	return nil
}

func (s *Store) Renewals(context.Context) ([]core.Renewal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Renewal(nil), s.renewals...), nil
}

func (s *Store) ResolveRenewal(_ context.Context, id int64, approve bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.renewals {
		if s.renewals[i].ID == id {
			if approve {
				s.renewals[i].Status = "approved"
			} else {
				s.renewals[i].Status = "rejected"
			}
			s.decisions = append(s.decisions, fmt.Sprintf("renewal:%d:%v", id, approve))
			return nil
		}
	}
	return fmt.Errorf("renewal %d not found", id)
}
