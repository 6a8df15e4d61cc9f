package services

import (
	"context"
	"testing"
	"time"

	"singil/internal/core"
	"singil/internal/portal/memory"
	"singil/internal/report"
)

func TestReportService_Report(t *testing.T) {
	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	svc := NewReportService(memory.Seeded(now), nil)

	months, err := svc.Report(context.Background(), core.Market, core.DateRange{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if len(months) != 1 {
		t.Fatalf("Report() returned %d months, want 1", len(months))
	}
	if got := months[0].Total().Centavos; got != 22500 {
		t.Errorf("month total = %d centavos, want 22500", got)
	}
}

func TestReportService_Report_InvalidRange(t *testing.T) {
	svc := NewReportService(memory.New(), nil)

	_, err := svc.Report(context.Background(), core.Market, core.DateRange{
		Start: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("Report() with inverted range should fail")
	}
}

func TestReportService_CombinedReport_MergesDays(t *testing.T) {
	store := memory.New()
	env := func(amount float64) report.RawEnvelope {
		return report.RawEnvelope{Months: []report.RawMonth{{
			Month: "August",
			Year:  2026,
			Days: []report.RawDay{{
				DayLabel: "(Fri) Aug 14",
				Details:  []report.RawDetail{{Collector: "Cruz", Amount: core.ParseAmount(amount)}},
			}},
		}}}
	}
	store.SetEnvelope(core.Market, env(100))
	store.SetEnvelope(core.Wharf, env(50))
	store.SetEnvelope(core.Motorpool, env(25))
	store.SetEnvelope(core.Slaughter, env(10))

	svc := NewReportService(store, nil)
	months, err := svc.CombinedReport(context.Background(), core.DateRange{})
	if err != nil {
		t.Fatalf("CombinedReport() error = %v", err)
	}

	if len(months) != 1 {
		t.Fatalf("CombinedReport() returned %d months, want 1", len(months))
	}
	if len(months[0].Days) != 1 {
		t.Fatalf("merged month has %d days, want 1", len(months[0].Days))
	}
	day := months[0].Days[0]
	if len(day.Details) != 4 {
		t.Errorf("merged day has %d details, want 4", len(day.Details))
	}
	if day.Total.Centavos != 18500 {
		t.Errorf("merged day total = %d centavos, want 18500", day.Total.Centavos)
	}
}

func TestReportService_Groups(t *testing.T) {
	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	svc := NewReportService(memory.Seeded(now), nil)

	months, err := svc.Report(context.Background(), core.Market, core.DateRange{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	groups := svc.Groups(core.Market, months)
	if len(groups) != 2 {
		t.Fatalf("Groups() returned %d groups, want 2", len(groups))
	}
	if groups[0].Amount.Centavos != 15000 {
		t.Errorf("first group amount = %d centavos, want 15000", groups[0].Amount.Centavos)
	}
	if got := core.GrandTotal(groups).Centavos; got != 22500 {
		t.Errorf("grand total = %d centavos, want 22500", got)
	}
}

func TestReportService_Trend_TwelvePoints(t *testing.T) {
	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	svc := NewReportService(memory.Seeded(now), nil)

	points, err := svc.Trend(context.Background(), core.Market, 2026)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}

	if len(points) != 12 {
		t.Fatalf("Trend() returned %d points, want 12", len(points))
	}
	if points[0].Month != "January" {
		t.Errorf("first point month = %q, want January", points[0].Month)
	}
	if points[7].Total.Centavos != 22500 {
		t.Errorf("August total = %d centavos, want 22500", points[7].Total.Centavos)
	}
	if points[1].Total.Centavos != 0 {
		t.Errorf("February total = %d centavos, want 0", points[1].Total.Centavos)
	}
}
