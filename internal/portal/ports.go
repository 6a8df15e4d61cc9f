// Package portal defines the ports through which the service talks to the
// municipal revenue portal's REST backend, plus the request-sequencing
// guard shared by their callers. Adapters live in portal/rest (live API)
// and portal/memory (fixtures).
package portal

import (
	"context"
	"fmt"

	"singil/internal/core"
	"singil/internal/report"
)

// Ports for the portal backend.
type (
	// ReportReader fetches one department's report envelope for a date
	// range. An unbounded range lets the backend default to the current
	// year. A single failed call is terminal for that fetch: no retry.
	ReportReader interface {
		Report(ctx context.Context, dept core.Department, r core.DateRange) (report.RawEnvelope, error)
	}

	// SectionReader lists market sections with available-stall counts.
	SectionReader interface {
		AvailableStalls(ctx context.Context) ([]core.Section, error)
	}

	// StatsReader serves the admin dashboard's headline numbers.
	StatsReader interface {
		DashboardStats(ctx context.Context) (core.DashboardStats, error)
		CollectorTotals(ctx context.Context) ([]core.CollectorTotal, error)
	}

	// NotificationReader lists admin notifications, newest first.
	NotificationReader interface {
		Notifications(ctx context.Context) ([]core.Notification, error)
	}

	// NotificationMarker marks a single notification read server-side.
	NotificationMarker interface {
		MarkRead(ctx context.Context, id int64) error
	}

	// Authenticator exchanges credentials for a bearer session.
	Authenticator interface {
		Login(ctx context.Context, username, password string) (core.AuthSession, error)
	}

	// ApprovalWriter covers the admin mutation endpoints. Every call
	// mutates server state and expects the caller to refetch the
	// affected list afterward (fetch-after-write; no optimistic update).
	ApprovalWriter interface {
		ValidateVendorProfile(ctx context.Context, id int64, approve bool, reason string) error
		SetInchargeStatus(ctx context.Context, id int64, status string) error
		SetStallChangeStatus(ctx context.Context, id int64, status string) error
		ResolveStallRemoval(ctx context.Context, id int64, approve bool, reason string) error
		ApproveRemittance(ctx context.Context, id int64) error
	}

	// RenewalReader lists pending market-registration renewals.
	RenewalReader interface {
		Renewals(ctx context.Context) ([]core.Renewal, error)
	}

	// RenewalWriter resolves a renewal application.
	RenewalWriter interface {
		ResolveRenewal(ctx context.Context, id int64, approve bool, reason string) error
	}
)

// StatusError reports a non-2xx portal response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal returned %d for %s", e.Code, e.URL)
}

// IsAuthError reports whether the failure is a 401/403, meaning the
// stored bearer token was rejected.
func (e *StatusError) IsAuthError() bool {
	return e.Code == 401 || e.Code == 403
}
