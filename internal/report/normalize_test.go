package report

import (
	"encoding/json"
	"testing"
	"time"

	"singil/internal/core"
)

const marketEnvelope = `{
  "months": [
    {
      "month": "January",
      "days": [
        {
          "day_label": "(Fri) Jan 2",
          "total_amount": "999.99",
          "details": [
            {"vendor_name": "A", "stall_number": "5", "amount": "₱100.00", "collector": "Cruz"},
            {"vendor_name": "A", "stall_number": "6", "amount": 50, "collector": "Cruz"}
          ]
        }
      ]
    },
    {
      "month": "March",
      "days": [
        {
          "day_label": "(Mon) Mar 9",
          "total_amount": null,
          "details": [
            {"vendor_name": "B", "stall_number": "7", "total_amount": "75"}
          ]
        },
        {
          "day_label": "(Tue) Mar 10",
          "details": []
        }
      ]
    },
    {"month": "February", "days": []}
  ]
}`

func decodeEnvelope(t *testing.T, body string) RawEnvelope {
	t.Helper()
	var raw RawEnvelope
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return raw
}

func TestNormalizeSortsAndDerivesTotals(t *testing.T) {
	months := Normalize(decodeEnvelope(t, marketEnvelope), 2026)

	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	// Recency descending: March, February, January.
	want := []string{"March", "February", "January"}
	for i, m := range months {
		if m.Name != want[i] {
			t.Fatalf("month %d = %s, want %s", i, m.Name, want[i])
		}
	}

	march := months[0]
	if len(march.Days) != 2 {
		t.Fatalf("March days = %d", len(march.Days))
	}
	// Days newest first; the wire total (null) is ignored and re-derived.
	if march.Days[0].Label != "(Tue) Mar 10" || march.Days[1].Label != "(Mon) Mar 9" {
		t.Fatalf("March day order: %q, %q", march.Days[0].Label, march.Days[1].Label)
	}
	if march.Days[1].Total != core.ParseAmount(75) {
		t.Errorf("Mar 9 total = %v, want 75", march.Days[1].Total.Pesos())
	}

	jan := months[2]
	if jan.Days[0].Total != core.ParseAmount(150) {
		t.Errorf("Jan 2 derived total = %v, want 150 (wire said 999.99)", jan.Days[0].Total.Pesos())
	}
	if jan.Days[0].Date != time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Jan 2 date = %v", jan.Days[0].Date)
	}
}

func TestDropEmptyKeepsTrendContribution(t *testing.T) {
	months := Normalize(decodeEnvelope(t, marketEnvelope), 2026)

	display := DropEmpty(months)
	if len(display) != 2 {
		t.Fatalf("display months = %d, want 2 (February dropped)", len(display))
	}
	for _, m := range display {
		if m.Name == "February" {
			t.Fatal("empty February should not be displayed")
		}
	}

	series := core.TrendSeries(months)
	if len(series) != 12 {
		t.Fatalf("trend length = %d", len(series))
	}
	if series[1].Month != "February" || series[1].Total.Centavos != 0 {
		t.Errorf("February trend point = %+v, want zero", series[1])
	}
	if series[0].Total != core.ParseAmount(150) {
		t.Errorf("January trend = %v, want 150", series[0].Total.Pesos())
	}
}

const combinedEnvelope = `{
  "months": [
    {
      "month": "August",
      "days": [
        {
          "day_label": "(Mon) Aug 3",
          "market": {
            "total_amount": "100",
            "details": [{"vendor_name": "A", "amount": "100", "stall_number": "5"}]
          },
          "slaughter": {
            "total_amount": "60",
            "details": [{"customer_name": "Mang Ben", "animal_type": "hog", "amount": "60"}]
          }
        }
      ]
    }
  ]
}`

func TestNormalizeCombinedDefaultFillsDepartments(t *testing.T) {
	raw := decodeEnvelope(t, combinedEnvelope)

	// Missing wharf block normalizes to an empty day, not a crash.
	wharf := NormalizeDepartment(raw, core.Wharf, 2026)
	if len(wharf) != 1 || len(wharf[0].Days) != 1 {
		t.Fatalf("wharf shape: %+v", wharf)
	}
	if !wharf[0].Days[0].Empty() || wharf[0].Days[0].Total.Centavos != 0 {
		t.Errorf("missing wharf block should default to zero day")
	}

	combined := NormalizeCombined(raw, 2026)
	day := combined[0].Days[0]
	if len(day.Details) != 2 {
		t.Fatalf("combined details = %d, want 2", len(day.Details))
	}
	if day.Total != core.ParseAmount(160) {
		t.Errorf("combined total = %v, want 160", day.Total.Pesos())
	}
	// Alternate field spellings map through.
	if day.Details[1].Customer != "Mang Ben" || day.Details[1].Animal != "hog" {
		t.Errorf("slaughter detail = %+v", day.Details[1])
	}
}

func TestDetailsFlattens(t *testing.T) {
	months := Normalize(decodeEnvelope(t, marketEnvelope), 2026)
	details := Details(months)
	if len(details) != 3 {
		t.Fatalf("flattened details = %d, want 3", len(details))
	}
	if core.SumDetails(details) != core.ParseAmount(225) {
		t.Errorf("flat total = %v, want 225", core.SumDetails(details).Pesos())
	}
}

func TestFallbackYear(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bounded := core.DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if y := FallbackYear(bounded, now); y != 2025 {
		t.Errorf("bounded year = %d, want 2025", y)
	}
	if y := FallbackYear(core.DateRange{}, now); y != 2026 {
		t.Errorf("unbounded year = %d, want 2026", y)
	}
}
