package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"singil/internal/amqp"
	"singil/internal/core"
	"singil/internal/export"
	"singil/internal/report"
	"singil/internal/services"
	"singil/internal/storage"
)

// SheetsDestination pushes a rendered table to a remote spreadsheet.
// Implemented by export/google.Destination.
type SheetsDestination interface {
	Append(ctx context.Context, t export.Table) error
}

// ExportWorker turns queued export requests into spreadsheet artifacts:
// fetch, normalize, lay out, render, log. Artifacts land in OutputDir;
// a configured Sheets destination additionally receives the table.
type ExportWorker struct {
	reports   *services.ReportService
	storage   *storage.SQLiteRepository
	sheets    SheetsDestination
	outputDir string
	now       func() time.Time
}

func NewExportWorker(
	reports *services.ReportService,
	storage *storage.SQLiteRepository,
	sheets SheetsDestination,
	outputDir string,
) *ExportWorker {
	return &ExportWorker{
		reports:   reports,
		storage:   storage,
		sheets:    sheets,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// HandleExportRequest processes a single export request from AMQP.
// Returning an error requeues the delivery.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	dept, err := core.ParseDepartment(msg.Department)
	if err != nil {
		return fmt.Errorf("parse department %q: %w", msg.Department, err)
	}

	rng, err := parseRange(msg.StartDate, msg.EndDate)
	if err != nil {
		return fmt.Errorf("parse range: %w", err)
	}

	var months []core.ReportMonth
	if dept == core.Combined {
		months, err = w.reports.CombinedReport(ctx, rng)
	} else {
		months, err = w.reports.Report(ctx, dept, rng)
	}
	if err != nil {
		return fmt.Errorf("fetch report: %w", err)
	}

	table := export.DetailTable(dept, report.Details(months))

	var buf bytes.Buffer
	switch msg.Format {
	case "csv":
		err = export.WriteCSV(&buf, table)
	case "", "xlsx":
		msg.Format = "xlsx"
		err = export.WriteXLSX(&buf, table)
	default:
		return fmt.Errorf("unknown export format: %s", msg.Format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", msg.Format, err)
	}

	filename := export.Filename(dept, rng, msg.Format)
	if err := w.writeArtifact(filename, buf.Bytes()); err != nil {
		return err
	}

	if w.sheets != nil {
		if err := w.sheets.Append(ctx, table); err != nil {
			slog.ErrorContext(ctx, "Failed to push export to spreadsheet",
				"filename", filename,
				"error", err)
			// Artifact is on disk; don't requeue for a Sheets failure.
		}
	}

	w.logExport(ctx, dept, rng, msg.Format, filename, len(table.Rows))

	slog.InfoContext(ctx, "Export artifact written",
		"filename", filename,
		"rows", len(table.Rows),
		"format", msg.Format)

	return nil
}

func (w *ExportWorker) writeArtifact(filename string, data []byte) error {
	if w.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

func (w *ExportWorker) logExport(ctx context.Context, dept core.Department, rng core.DateRange, format, filename string, rows int) {
	if w.storage == nil {
		return
	}
	rec := storage.ExportRecord{
		Department: dept,
		RangeKey:   rng.Key(),
		Format:     format,
		Filename:   filename,
		RowCount:   rows,
		CreatedAt:  w.now(),
	}
	if err := w.storage.LogExport(ctx, rec); err != nil {
		slog.WarnContext(ctx, "Failed to log export", "filename", filename, "error", err)
	}
}

func parseRange(start, end string) (core.DateRange, error) {
	var rng core.DateRange
	if start == "" && end == "" {
		return rng, nil
	}
	var err error
	rng.Start, err = time.Parse("2006-01-02", start)
	if err != nil {
		return rng, fmt.Errorf("start date %q: %w", start, err)
	}
	rng.End, err = time.Parse("2006-01-02", end)
	if err != nil {
		return rng, fmt.Errorf("end date %q: %w", end, err)
	}
	return rng, rng.Validate()
}
