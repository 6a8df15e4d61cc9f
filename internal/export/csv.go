package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders a table as CSV with the same row layout as the xlsx
// writer: header, body, then the grand-total row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if t.HasTotal && len(t.Columns) > 0 {
		total := make([]string, len(t.Columns))
		total[0] = "Grand Total"
		total[len(total)-1] = t.GrandTotal.Format()
		if err := cw.Write(total); err != nil {
			return fmt.Errorf("write total: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
