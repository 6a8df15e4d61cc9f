package core

import (
	"testing"
	"time"
)

func TestMonthIndex(t *testing.T) {
	cases := []struct {
		in   string
		idx  int
		fail bool
	}{
		{"January", 1, false},
		{"december", 12, false},
		{"Nov", 11, false},
		{" March ", 3, false},
		{"", 0, true},
		{"Marchember", 0, true},
	}
	for _, tc := range cases {
		got, err := MonthIndex(tc.in)
		if tc.fail {
			if err == nil {
				t.Errorf("MonthIndex(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.idx {
			t.Errorf("MonthIndex(%q) = %d, %v; want %d", tc.in, got, err, tc.idx)
		}
	}
}

func TestSortMonthsDesc(t *testing.T) {
	months := []ReportMonth{
		{Name: "January", Year: 2026},
		{Name: "March", Year: 2026},
		{Name: "December", Year: 2025},
	}
	SortMonthsDesc(months)
	want := []string{"March", "January", "December"}
	for i, m := range months {
		if m.Name != want[i] {
			t.Fatalf("position %d = %s, want %s", i, m.Name, want[i])
		}
	}
}

func TestParseDayLabel(t *testing.T) {
	cases := []struct {
		in    string
		month int
		day   int
		ok    bool
	}{
		{"(Mon) Nov 14", 11, 14, true},
		{"Nov 14", 11, 14, true},
		{"(Fri) January 2", 1, 2, true},
		{"total", 0, 0, false},
		{"", 0, 0, false},
		{"(Mon) Nov 99", 0, 0, false},
	}
	for _, tc := range cases {
		m, d, ok := ParseDayLabel(tc.in)
		if ok != tc.ok || m != tc.month || d != tc.day {
			t.Errorf("ParseDayLabel(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.in, m, d, ok, tc.month, tc.day, tc.ok)
		}
	}
}

func TestSortDaysDesc(t *testing.T) {
	days := []ReportDay{
		{Label: "(Mon) Nov 14", Date: time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)},
		{Label: "(Wed) Nov 16", Date: time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC)},
		{Label: "odd label"},
		{Label: "(Tue) Nov 15", Date: time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC)},
	}
	SortDaysDesc(days)
	want := []string{"(Wed) Nov 16", "(Tue) Nov 15", "(Mon) Nov 14", "odd label"}
	for i, d := range days {
		if d.Label != want[i] {
			t.Fatalf("position %d = %q, want %q", i, d.Label, want[i])
		}
	}
}

func TestTrendSeriesAlwaysTwelvePoints(t *testing.T) {
	months := []ReportMonth{
		{Name: "March", Year: 2026, Days: []ReportDay{
			{Total: peso(100), Details: []PaymentDetail{{Amount: peso(100)}}},
		}},
		{Name: "February", Year: 2026}, // empty month: dropped from lists, zero in trend
		{Name: "January", Year: 2026, Days: []ReportDay{
			{Total: peso(40), Details: []PaymentDetail{{Amount: peso(40)}}},
		}},
	}
	series := TrendSeries(months)
	if len(series) != 12 {
		t.Fatalf("series length = %d, want 12", len(series))
	}
	if series[0].Month != "January" || series[0].Total != peso(40) {
		t.Errorf("January point = %+v", series[0])
	}
	if series[1].Month != "February" || series[1].Total.Centavos != 0 {
		t.Errorf("empty February should be zero, got %+v", series[1])
	}
	if series[2].Total != peso(100) {
		t.Errorf("March total = %v, want 100", series[2].Total.Pesos())
	}
	for i := 3; i < 12; i++ {
		if series[i].Total.Centavos != 0 {
			t.Errorf("absent month %s should be zero", series[i].Month)
		}
	}
}
