package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Market    Department = "market"
	Wharf     Department = "wharf"
	Motorpool Department = "motorpool"
	Slaughter Department = "slaughter"
	Combined  Department = "combined"
)

const (
	RoleAdmin             Role = "admin"
	RoleVendor            Role = "vendor"
	RoleInchargeCollector Role = "incharge_collector"
	RoleMainCollector     Role = "main_collector"
	RoleCollectorStaff    Role = "collector_staff"
)

type (
	Department string

	Role string

	// DateRange bounds a report query. Zero bounds mean "server default"
	// (the backend falls back to the current year).
	DateRange struct {
		Start time.Time
		End   time.Time
	}

	// PaymentDetail is one flat collection record as returned by the
	// reporting API. Fields vary by department; absent ones stay empty.
	PaymentDetail struct {
		Amount      Money
		PaymentDate string
		VendorName  string
		StallNumber string
		Section     string
		PaymentType string
		Collector   string
		ReceivedBy  string
		Customer    string
		Animal      string
	}

	// ReportDay is one day row inside a report month. Total is always
	// re-derived from Details, never taken from the wire.
	ReportDay struct {
		Label   string
		Date    time.Time
		Total   Money
		Details []PaymentDetail
	}

	ReportMonth struct {
		Name string
		Year int
		Days []ReportDay
	}

	// Group is an aggregation of payment details sharing a composite
	// business key. Stalls keeps stall numbers in first-seen order,
	// duplicates included.
	Group struct {
		Key     string
		First   PaymentDetail
		Stalls  []string
		Amount  Money
		Entries []PaymentDetail
	}

	Notification struct {
		ID        int64
		Title     string
		Body      string
		CreatedAt time.Time
		Read      bool
	}

	// Section is a named grouping of stalls with its availability count.
	Section struct {
		ID              int64
		Name            string
		AvailableStalls int
	}

	// AuthSession is the client-held login state: bearer token plus the
	// role that gates which surfaces are reachable. The token is never
	// validated locally; the backend rejects stale ones on use.
	AuthSession struct {
		Token       string
		Role        Role
		UserID      string
		CollectorID string
	}

	// DashboardStats is the admin dashboard's headline card data.
	DashboardStats struct {
		TotalCollections  Money
		PendingApprovals  int
		ActiveVendors     int
		OccupiedStalls    int
		AvailableStalls   int
		PendingRemittance Money
	}

	// CollectorTotal is one collector's remitted total for the admin
	// collector-totals table.
	CollectorTotal struct {
		CollectorID string
		Collector   string
		Department  Department
		Total       Money
	}

	// Renewal is a pending market-registration renewal application.
	Renewal struct {
		ID          int64
		VendorName  string
		StallNumber string
		Section     string
		FiledAt     time.Time
		Status      string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnknownMonth      = errors.New("unknown month name")
	ErrUnknownDepartment = errors.New("unknown department")
	ErrEmptyRange        = errors.New("empty date range")
	ErrInvalidPage       = errors.New("invalid page number")
)

// Departments lists the four revenue streams, in canonical report order.
func Departments() []Department {
	return []Department{Market, Wharf, Motorpool, Slaughter}
}

// ParseDepartment maps a path/query segment to a Department.
func ParseDepartment(s string) (Department, error) {
	switch Department(strings.ToLower(strings.TrimSpace(s))) {
	case Market:
		return Market, nil
	case Wharf:
		return Wharf, nil
	case Motorpool, "motor_pool", "motor-pool":
		return Motorpool, nil
	case Slaughter, "slaughterhouse":
		return Slaughter, nil
	case Combined:
		return Combined, nil
	default:
		return "", ErrUnknownDepartment
	}
}

func (d Department) Valid() bool {
	switch d {
	case Market, Wharf, Motorpool, Slaughter, Combined:
		return true
	default:
		return false
	}
}

// Title returns the department's display name for report headers.
func (d Department) Title() string {
	switch d {
	case Market:
		return "Market"
	case Wharf:
		return "Wharf"
	case Motorpool:
		return "Motor Pool"
	case Slaughter:
		return "Slaughterhouse"
	case Combined:
		return "Combined"
	default:
		return string(d)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleInchargeCollector, RoleMainCollector, RoleCollectorStaff:
		return true
	default:
		return false
	}
}

// Validate checks that a bounded range is ordered. An unbounded range is
// valid and means "server default".
func (r DateRange) Validate() error {
	if r.Start.IsZero() && r.End.IsZero() {
		return nil
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrEmptyRange
	}
	if r.End.Before(r.Start) {
		return errors.New("end date before start date")
	}
	return nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Key renders the range as a stable cache/snapshot key.
func (r DateRange) Key() string {
	if r.IsZero() {
		return "all"
	}
	return r.Start.Format("2006-01-02") + ".." + r.End.Format("2006-01-02")
}

// DeriveTotal re-derives the day total from its details.
func (d ReportDay) DeriveTotal() Money {
	var sum Money
	for _, det := range d.Details {
		sum = sum.Add(det.Amount)
	}
	return sum
}

// Empty reports whether the day carries no payment details.
func (d ReportDay) Empty() bool {
	return len(d.Details) == 0
}

// Total sums the re-derived totals of all non-empty days.
func (m ReportMonth) Total() Money {
	var sum Money
	for _, d := range m.Days {
		sum = sum.Add(d.Total)
	}
	return sum
}
