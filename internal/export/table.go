package export

import (
	"fmt"
	"time"

	"singil/internal/core"
)

// Table is the flat model every export destination renders: a header row,
// body rows, and an optional grand-total row appended last.
type Table struct {
	Title      string
	Columns    []string
	Rows       [][]string
	GrandTotal core.Money
	HasTotal   bool
}

const dateLayout = "2006-01-02"

// DetailTable lays out raw payment details for a department, one row per
// payment. Column sets follow what each department records.
func DetailTable(dept core.Department, details []core.PaymentDetail) Table {
	t := Table{
		Title:      fmt.Sprintf("%s Report", dept.Title()),
		Columns:    detailColumns(dept),
		GrandTotal: core.SumDetails(details),
		HasTotal:   true,
	}
	for _, d := range details {
		t.Rows = append(t.Rows, detailRow(dept, d))
	}
	return t
}

// GroupTable lays out an aggregated dataset, one row per group.
func GroupTable(dept core.Department, groups []core.Group) Table {
	t := Table{
		Title:    fmt.Sprintf("%s Summary", dept.Title()),
		Columns:  groupColumns(dept),
		HasTotal: true,
	}
	for _, g := range groups {
		t.Rows = append(t.Rows, groupRow(dept, g))
		t.GrandTotal = t.GrandTotal.Add(g.Amount)
	}
	return t
}

func detailColumns(dept core.Department) []string {
	switch dept {
	case core.Market:
		return []string{"Payment Date", "Vendor", "Stall No.", "Section", "Payment Type", "Collector", "Received By", "Amount"}
	case core.Slaughter:
		return []string{"Payment Date", "Customer", "Animal", "Amount"}
	default:
		return []string{"Payment Date", "Collector", "Received By", "Amount"}
	}
}

func detailRow(dept core.Department, d core.PaymentDetail) []string {
	switch dept {
	case core.Market:
		return []string{d.PaymentDate, d.VendorName, d.StallNumber, d.Section, d.PaymentType, d.Collector, d.ReceivedBy, d.Amount.Format()}
	case core.Slaughter:
		return []string{d.PaymentDate, d.Customer, d.Animal, d.Amount.Format()}
	default:
		return []string{d.PaymentDate, d.Collector, d.ReceivedBy, d.Amount.Format()}
	}
}

func groupColumns(dept core.Department) []string {
	switch dept {
	case core.Market:
		return []string{"Vendor", "Stalls", "Section", "Payment Type", "Collector", "Received By", "Amount"}
	case core.Slaughter:
		return []string{"Customer", "Animal", "Payment Date", "Amount"}
	default:
		return []string{"Collector", "Received By", "Entries", "Amount"}
	}
}

func groupRow(dept core.Department, g core.Group) []string {
	switch dept {
	case core.Market:
		return []string{
			g.First.VendorName,
			joinStalls(g.Stalls),
			g.First.Section,
			g.First.PaymentType,
			g.First.Collector,
			g.First.ReceivedBy,
			g.Amount.Format(),
		}
	case core.Slaughter:
		return []string{g.First.Customer, g.First.Animal, g.First.PaymentDate, g.Amount.Format()}
	default:
		return []string{g.First.Collector, g.First.ReceivedBy, fmt.Sprint(g.Entries), g.Amount.Format()}
	}
}

func joinStalls(stalls []string) string {
	out := ""
	for i, s := range stalls {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// Filename synthesizes the artifact name for a department export. Bounded
// ranges encode both dates; an unbounded range collapses to "-all".
func Filename(dept core.Department, rng core.DateRange, ext string) string {
	if rng.IsZero() {
		return fmt.Sprintf("%s-report-all.%s", dept, ext)
	}
	return fmt.Sprintf("%s-report_%s_%s.%s",
		dept,
		rng.Start.Format(dateLayout),
		rng.End.Format(dateLayout),
		ext)
}

// FilenameForDay names a single-day artifact.
func FilenameForDay(dept core.Department, day time.Time, ext string) string {
	return fmt.Sprintf("%s-report_%s.%s", dept, day.Format(dateLayout), ext)
}
