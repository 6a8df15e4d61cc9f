package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"singil/internal/core"
)

func marketDetails() []core.PaymentDetail {
	return []core.PaymentDetail{
		{
			Amount:      core.ParseAmount(100.0),
			PaymentDate: "2026-08-01",
			VendorName:  "Dela Cruz",
			StallNumber: "5",
			Section:     "Dry Goods",
			PaymentType: "Monthly Rental",
			Collector:   "Reyes",
			ReceivedBy:  "Santos",
		},
		{
			Amount:      core.ParseAmount(50.0),
			PaymentDate: "2026-08-02",
			VendorName:  "Dela Cruz",
			StallNumber: "6",
			Section:     "Dry Goods",
			PaymentType: "Monthly Rental",
			Collector:   "Reyes",
			ReceivedBy:  "Santos",
		},
	}
}

func TestFilename(t *testing.T) {
	bounded := core.DateRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		dept core.Department
		rng  core.DateRange
		ext  string
		want string
	}{
		{"bounded market", core.Market, bounded, "xlsx", "market-report_2026-08-01_2026-08-31.xlsx"},
		{"unbounded wharf", core.Wharf, core.DateRange{}, "csv", "wharf-report-all.csv"},
		{"bounded combined", core.Combined, bounded, "csv", "combined-report_2026-08-01_2026-08-31.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.dept, tt.rng, tt.ext)
			if got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailTable_MarketColumns(t *testing.T) {
	table := DetailTable(core.Market, marketDetails())

	if len(table.Columns) != 8 {
		t.Fatalf("market detail table has %d columns, want 8", len(table.Columns))
	}
	if table.Columns[1] != "Vendor" || table.Columns[7] != "Amount" {
		t.Errorf("unexpected column layout: %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("table has %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0][1] != "Dela Cruz" {
		t.Errorf("row vendor = %q", table.Rows[0][1])
	}
	if table.GrandTotal.Centavos != 15000 {
		t.Errorf("grand total = %d centavos, want 15000", table.GrandTotal.Centavos)
	}
}

func TestGroupTable_StallsJoined(t *testing.T) {
	groups := core.GroupBy(marketDetails(), core.DepartmentKey(core.Market))
	table := GroupTable(core.Market, groups)

	if len(table.Rows) != 1 {
		t.Fatalf("table has %d rows, want 1", len(table.Rows))
	}
	if table.Rows[0][1] != "5, 6" {
		t.Errorf("stalls column = %q, want %q", table.Rows[0][1], "5, 6")
	}
	if table.GrandTotal.Centavos != 15000 {
		t.Errorf("grand total = %d centavos, want 15000", table.GrandTotal.Centavos)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Run("detail rows with total", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, DetailTable(core.Slaughter, []core.PaymentDetail{
			{Amount: core.ParseAmount(300.0), PaymentDate: "2026-08-03", Customer: "Ramos", Animal: "Swine"},
		})); err != nil {
			t.Fatalf("WriteCSV() error = %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("csv has %d lines, want 3 (header, row, total)", len(lines))
		}
		if !strings.HasPrefix(lines[0], "Payment Date,Customer,Animal") {
			t.Errorf("header = %q", lines[0])
		}
		if !strings.Contains(lines[1], "Ramos") {
			t.Errorf("body row = %q", lines[1])
		}
		if !strings.HasPrefix(lines[2], "Grand Total") {
			t.Errorf("total row = %q", lines[2])
		}
	})

	t.Run("empty dataset still emits headers", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, DetailTable(core.Wharf, nil)); err != nil {
			t.Fatalf("WriteCSV() error = %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("csv has %d lines, want 2 (header, total)", len(lines))
		}
		if !strings.HasPrefix(lines[0], "Payment Date,Collector") {
			t.Errorf("header = %q", lines[0])
		}
	})
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	table := DetailTable(core.Market, marketDetails())
	if err := WriteXLSX(&buf, table); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	// header + 2 body rows + grand total
	if len(rows) != 4 {
		t.Fatalf("workbook has %d rows, want 4", len(rows))
	}
	if rows[0][0] != "Payment Date" {
		t.Errorf("first header cell = %q", rows[0][0])
	}
	if rows[3][0] != "Grand Total" {
		t.Errorf("total label = %q", rows[3][0])
	}
}

func TestWriteXLSX_EmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, DetailTable(core.Motorpool, nil)); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("workbook has %d rows, want 2 (header, total)", len(rows))
	}
}
