package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// WriteXLSX renders a table as an xlsx workbook. An empty dataset still
// yields a workbook with the header row so downstream tooling always gets
// a well-formed file.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	for col, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("set header %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(t.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		f.SetCellStyle(sheetName, first, last, headerStyle)
	}

	row := 2
	for _, r := range t.Rows {
		for col, v := range r {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("body cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		row++
	}

	if t.HasTotal && len(t.Columns) > 0 {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		totalCell, _ := excelize.CoordinatesToCellName(len(t.Columns), row)
		if err := f.SetCellValue(sheetName, labelCell, "Grand Total"); err != nil {
			return fmt.Errorf("set total label: %w", err)
		}
		if err := f.SetCellValue(sheetName, totalCell, t.GrandTotal.Format()); err != nil {
			return fmt.Errorf("set total: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
