package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"singil/internal/core"
	"singil/internal/report"
)

type reportResponse struct {
	Department string            `json:"department"`
	Range      string            `json:"range"`
	Months     []monthDTO        `json:"months"`
	Groups     []groupDTO        `json:"groups"`
	Page       int               `json:"page"`
	Pages      int               `json:"pages"`
	PageSize   int               `json:"page_size"`
	Subtotal   core.Money        `json:"page_subtotal"`
	GrandTotal core.Money        `json:"grand_total"`
	Trend      []core.TrendPoint `json:"trend"`
}

type monthDTO struct {
	Name  string     `json:"name"`
	Year  int        `json:"year"`
	Total core.Money `json:"total"`
	Days  []dayDTO   `json:"days"`
}

type dayDTO struct {
	Label   string      `json:"label"`
	Date    string      `json:"date"`
	Total   core.Money  `json:"total"`
	Details []detailDTO `json:"details"`
}

type detailDTO struct {
	Amount      core.Money `json:"amount"`
	PaymentDate string     `json:"payment_date"`
	VendorName  string     `json:"vendor_name,omitempty"`
	StallNumber string     `json:"stall_number,omitempty"`
	Section     string     `json:"section,omitempty"`
	PaymentType string     `json:"payment_type,omitempty"`
	Collector   string     `json:"collector,omitempty"`
	ReceivedBy  string     `json:"received_by,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	Animal      string     `json:"animal,omitempty"`
}

type groupDTO struct {
	Key     string     `json:"key"`
	Stalls  []string   `json:"stalls,omitempty"`
	Amount  core.Money `json:"amount"`
	Entries int        `json:"entries"`
	First   detailDTO  `json:"first"`
}

// fetchMonths serves normalized months from the LRU cache, fetching on a
// miss. Sequencing ensures a superseded fetch never overwrites the cache
// entry of a later one (last resolved wins).
func (s *Server) fetchMonths(ctx context.Context, dept core.Department, rng core.DateRange) ([]core.ReportMonth, error) {
	key := string(dept) + "|" + rng.Key()
	if months, ok := s.reportCache.Get(key); ok {
		return months, nil
	}

	gen := s.seq.Begin(key)
	var (
		months []core.ReportMonth
		err    error
	)
	if dept == core.Combined {
		months, err = s.reports.CombinedReport(ctx, rng)
	} else {
		months, err = s.reports.Report(ctx, dept, rng)
	}
	if err != nil {
		return nil, err
	}
	if s.seq.Current(key, gen) {
		s.reportCache.Set(key, months)
	}
	return months, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dept, err := pathDepartment(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.serveReport(w, r, dept)
}

func (s *Server) handleCombinedReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, core.Combined)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, dept core.Department) {
	rng, err := parseRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, size, err := parsePageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupParam := strings.TrimSpace(r.URL.Query().Get("group"))
	keyFn, err := groupKey(dept, groupParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months, err := s.fetchMonths(r.Context(), dept, rng)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report fetch failed",
			"department", dept, "range", rng.Key(), "error", err)
		writeServiceError(w, err)
		return
	}

	groups := core.GroupBy(report.Details(months), keyFn)

	pag := s.paginatorSized(dept, size)
	view := pag.Resolve(string(dept)+"|"+rng.Key()+"|"+groupParam, page, groups,
		func(g core.Group) core.Money { return g.Amount })

	display := report.DropEmpty(months)
	resp := reportResponse{
		Department: string(dept),
		Range:      rng.Key(),
		Months:     monthsToDTO(display),
		Groups:     groupsToDTO(view.Items),
		Page:       view.Page,
		Pages:      view.Pages,
		PageSize:   view.Size,
		Subtotal:   view.Subtotal,
		GrandTotal: core.GrandTotal(groups),
		Trend:      core.TrendSeries(months),
	}
	writeJSON(w, http.StatusOK, resp)
}

// paginatorSized returns the department's paginator, replacing it when the
// client asks for a different page size.
func (s *Server) paginatorSized(dept core.Department, size int) *core.Paginator[core.Group] {
	if size <= 0 {
		return s.paginator(dept)
	}
	s.pagMu.Lock()
	defer s.pagMu.Unlock()
	p, ok := s.paginators[dept]
	if !ok || p.Size() != size {
		p = core.NewPaginator[core.Group](size)
		s.paginators[dept] = p
	}
	return p
}

// groupKey resolves the optional group= override. The default is the
// department's own composite key.
func groupKey(dept core.Department, param string) (core.KeyFunc, error) {
	switch param {
	case "", "default":
		return core.DepartmentKey(dept), nil
	case "vendor":
		return core.KeyByVendor, nil
	default:
		return nil, &badGroupError{param}
	}
}

type badGroupError struct{ param string }

func (e *badGroupError) Error() string {
	return "unknown group " + strconv.Quote(e.param)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	dept, err := pathDepartment(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 2000 || year > 2100 {
			writeError(w, http.StatusBadRequest, "invalid year "+strconv.Quote(v))
			return
		}
	}

	points, err := s.reports.Trend(r.Context(), dept, year)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Trend fetch failed",
			"department", dept, "year", year, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"department": string(dept),
		"year":       year,
		"trend":      points,
	})
}

func monthsToDTO(months []core.ReportMonth) []monthDTO {
	out := make([]monthDTO, 0, len(months))
	for _, m := range months {
		days := make([]dayDTO, 0, len(m.Days))
		for _, d := range m.Days {
			details := make([]detailDTO, 0, len(d.Details))
			for _, det := range d.Details {
				details = append(details, detailToDTO(det))
			}
			days = append(days, dayDTO{
				Label:   d.Label,
				Date:    d.Date.Format(dateLayout),
				Total:   d.Total,
				Details: details,
			})
		}
		out = append(out, monthDTO{Name: m.Name, Year: m.Year, Total: m.Total(), Days: days})
	}
	return out
}

func groupsToDTO(groups []core.Group) []groupDTO {
	out := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupDTO{
			Key:     g.Key,
			Stalls:  g.Stalls,
			Amount:  g.Amount,
			Entries: len(g.Entries),
			First:   detailToDTO(g.First),
		})
	}
	return out
}

func detailToDTO(d core.PaymentDetail) detailDTO {
	return detailDTO{
		Amount:      d.Amount,
		PaymentDate: d.PaymentDate,
		VendorName:  d.VendorName,
		StallNumber: d.StallNumber,
		Section:     d.Section,
		PaymentType: d.PaymentType,
		Collector:   d.Collector,
		ReceivedBy:  d.ReceivedBy,
		Customer:    d.Customer,
		Animal:      d.Animal,
	}
}
