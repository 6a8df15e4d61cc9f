package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"singil/internal/amqp"
	"singil/internal/core"
	"singil/internal/export"
	"singil/internal/report"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// handleExportDownload streams a freshly built spreadsheet. The {file}
// segment carries both department and format: "market.xlsx", "wharf.csv".
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	dept, ext, err := parseExportTarget(r.PathValue("file"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rng, err := parseRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months, err := s.fetchMonths(r.Context(), dept, rng)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export fetch failed",
			"department", dept, "range", rng.Key(), "error", err)
		writeServiceError(w, err)
		return
	}

	var table export.Table
	if r.URL.Query().Get("view") == "groups" {
		table = export.GroupTable(dept, s.reports.Groups(dept, months))
	} else {
		table = export.DetailTable(dept, report.Details(months))
	}

	filename := export.Filename(dept, rng, ext)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch ext {
	case "csv":
		w.Header().Set("Content-Type", contentTypeCSV)
		err = export.WriteCSV(w, table)
	default:
		w.Header().Set("Content-Type", contentTypeXLSX)
		err = export.WriteXLSX(w, table)
	}
	if err != nil {
		// Headers are out by now; all that is left is to log it.
		s.logger.ErrorContext(r.Context(), "Export stream failed",
			"department", dept, "format", ext, "error", err)
		return
	}
	s.logger.InfoContext(r.Context(), "Export streamed",
		"department", dept, "format", ext, "filename", filename, "rows", len(table.Rows))
}

// handleExportQueue enqueues a background export over AMQP. The worker
// writes the artifact and appends it to the configured spreadsheet.
func (s *Server) handleExportQueue(w http.ResponseWriter, r *http.Request) {
	if s.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "export queue not configured")
		return
	}
	dept, err := pathDepartment(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rng, err := parseRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	switch format {
	case "", "xlsx", "csv":
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	var start, end string
	if !rng.IsZero() {
		start = rng.Start.Format(dateLayout)
		end = rng.End.Format(dateLayout)
	}
	msg := amqp.NewExportRequest(string(dept), start, end, format)
	if err := s.exports.PublishExportRequest(r.Context(), msg); err != nil {
		s.logger.ErrorContext(r.Context(), "Export enqueue failed",
			"department", dept, "error", err)
		writeError(w, http.StatusBadGateway, "export queue unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"department": string(dept),
		"format":     msg.Format,
		"queued_at":  msg.Timestamp.Format(time.RFC3339),
	})
}

func (s *Server) handleRecentExports(w http.ResponseWriter, r *http.Request) {
	recs, err := s.reports.RecentExports(r.Context(), 20)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent exports fetch failed", "error", err)
		writeServiceError(w, err)
		return
	}
	type recordDTO struct {
		Department string `json:"department"`
		RangeKey   string `json:"range"`
		Format     string `json:"format"`
		Filename   string `json:"filename"`
		RowCount   int    `json:"row_count"`
		CreatedAt  string `json:"created_at"`
	}
	out := make([]recordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordDTO{
			Department: string(rec.Department),
			RangeKey:   rec.RangeKey,
			Format:     rec.Format,
			Filename:   rec.Filename,
			RowCount:   rec.RowCount,
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": out})
}

func parseExportTarget(file string) (core.Department, string, error) {
	base, ext, ok := strings.Cut(file, ".")
	if !ok {
		return "", "", fmt.Errorf("export target %q needs an extension", file)
	}
	dept, err := core.ParseDepartment(base)
	if err != nil {
		return "", "", err
	}
	if ext != "xlsx" && ext != "csv" {
		return "", "", fmt.Errorf("unsupported export format %q", ext)
	}
	return dept, ext, nil
}
