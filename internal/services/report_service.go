package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"singil/internal/core"
	"singil/internal/portal"
	"singil/internal/report"
	"singil/internal/storage"
)

// ReportService orchestrates report fetches: portal fetch, normalization,
// and best-effort snapshot persistence for offline reads.
type ReportService struct {
	reader  portal.ReportReader
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewReportService(reader portal.ReportReader, storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{
		reader:  reader,
		storage: storage,
		now:     time.Now,
	}
}

// Report fetches and normalizes one department's report. The snapshot save
// is best-effort: a storage failure is logged and the fresh data still
// returned.
func (s *ReportService) Report(ctx context.Context, dept core.Department, rng core.DateRange) ([]core.ReportMonth, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	raw, err := s.reader.Report(ctx, dept, rng)
	if err != nil {
		return nil, fmt.Errorf("fetch %s report: %w", dept, err)
	}

	s.saveSnapshot(ctx, dept, rng, raw)

	return report.Normalize(raw, report.FallbackYear(rng, s.now())), nil
}

// CombinedReport fetches all four departments concurrently and merges the
// normalized months. A single department failure fails the whole fetch.
func (s *ReportService) CombinedReport(ctx context.Context, rng core.DateRange) ([]core.ReportMonth, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	depts := core.Departments()
	envelopes := make([]report.RawEnvelope, len(depts))

	g, gctx := errgroup.WithContext(ctx)
	for i, dept := range depts {
		g.Go(func() error {
			raw, err := s.reader.Report(gctx, dept, rng)
			if err != nil {
				return fmt.Errorf("fetch %s report: %w", dept, err)
			}
			envelopes[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	year := report.FallbackYear(rng, s.now())
	merged := map[string]*core.ReportMonth{}
	var order []string

	for i, dept := range depts {
		s.saveSnapshot(ctx, dept, rng, envelopes[i])
		for _, m := range report.Normalize(envelopes[i], year) {
			key := fmt.Sprintf("%s-%d", m.Name, m.Year)
			dst, ok := merged[key]
			if !ok {
				merged[key] = &core.ReportMonth{Name: m.Name, Year: m.Year, Days: m.Days}
				order = append(order, key)
				continue
			}
			dst.Days = mergeDays(dst.Days, m.Days)
		}
	}

	out := make([]core.ReportMonth, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	core.SortMonthsDesc(out)
	return out, nil
}

// mergeDays concatenates details of days sharing a label and re-sorts.
func mergeDays(a, b []core.ReportDay) []core.ReportDay {
	byLabel := map[string]int{}
	for i, d := range a {
		byLabel[d.Label] = i
	}
	for _, d := range b {
		if i, ok := byLabel[d.Label]; ok {
			a[i].Details = append(a[i].Details, d.Details...)
			a[i].Total = a[i].Total.Add(d.Total)
			continue
		}
		byLabel[d.Label] = len(a)
		a = append(a, d)
	}
	core.SortDaysDesc(a)
	return a
}

// Trend builds the 12-point monthly series for the dashboard chart.
func (s *ReportService) Trend(ctx context.Context, dept core.Department, year int) ([]core.TrendPoint, error) {
	rng := core.DateRange{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	months, err := s.Report(ctx, dept, rng)
	if err != nil {
		return nil, err
	}
	return core.TrendSeries(months), nil
}

// Groups aggregates a normalized report into the department's summary rows.
func (s *ReportService) Groups(dept core.Department, months []core.ReportMonth) []core.Group {
	return core.GroupBy(report.Details(months), core.DepartmentKey(dept))
}

func (s *ReportService) saveSnapshot(ctx context.Context, dept core.Department, rng core.DateRange, raw report.RawEnvelope) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveSnapshot(ctx, dept, rng.Key(), raw, s.now()); err != nil {
		slog.WarnContext(ctx, "Failed to save report snapshot",
			"department", dept,
			"range", rng.Key(),
			"error", err)
	}
}

// RecentExports lists logged export artifacts, newest first.
func (s *ReportService) RecentExports(ctx context.Context, limit int) ([]storage.ExportRecord, error) {
	if s.storage == nil {
		return nil, nil
	}
	recs, err := s.storage.RecentExports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent exports: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}
