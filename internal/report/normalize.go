package report

import (
	"time"

	"singil/internal/core"
)

// Normalize converts a raw envelope into core report months. Day totals
// are re-derived from details (the wire total_amount is advisory only),
// day dates are resolved from their labels, and months and days come back
// sorted newest first. Empty months are kept; display callers drop them
// with DropEmpty, trend charts keep them at zero.
//
// fallbackYear is used for months the backend sends without a year field,
// typically the queried year.
func Normalize(raw RawEnvelope, fallbackYear int) []core.ReportMonth {
	months := make([]core.ReportMonth, 0, len(raw.Months))
	for _, rm := range raw.Months {
		year := rm.Year
		if year == 0 {
			year = fallbackYear
		}
		m := core.ReportMonth{Name: rm.Month, Year: year}
		for _, rd := range rm.Days {
			day := normalizeDay(rd, rd.Details, year)
			m.Days = append(m.Days, day)
		}
		core.SortDaysDesc(m.Days)
		months = append(months, m)
	}
	core.SortMonthsDesc(months)
	return months
}

// NormalizeDepartment extracts one department's slice from a combined
// envelope, default-filling days where that department is absent.
func NormalizeDepartment(raw RawEnvelope, dept core.Department, fallbackYear int) []core.ReportMonth {
	months := make([]core.ReportMonth, 0, len(raw.Months))
	for _, rm := range raw.Months {
		year := rm.Year
		if year == 0 {
			year = fallbackYear
		}
		m := core.ReportMonth{Name: rm.Month, Year: year}
		for _, rd := range rm.Days {
			block := rd.dept(dept)
			m.Days = append(m.Days, normalizeDay(rd, block.Details, year))
		}
		core.SortDaysDesc(m.Days)
		months = append(months, m)
	}
	core.SortMonthsDesc(months)
	return months
}

// NormalizeCombined flattens a combined envelope into one detail stream
// per day, concatenating the four department blocks in canonical order.
// Days that carry a flat detail list already pass through Normalize
// semantics unchanged.
func NormalizeCombined(raw RawEnvelope, fallbackYear int) []core.ReportMonth {
	months := make([]core.ReportMonth, 0, len(raw.Months))
	for _, rm := range raw.Months {
		year := rm.Year
		if year == 0 {
			year = fallbackYear
		}
		m := core.ReportMonth{Name: rm.Month, Year: year}
		for _, rd := range rm.Days {
			details := rd.Details
			if len(details) == 0 {
				for _, dept := range core.Departments() {
					details = append(details, rd.dept(dept).Details...)
				}
			}
			m.Days = append(m.Days, normalizeDay(rd, details, year))
		}
		core.SortDaysDesc(m.Days)
		months = append(months, m)
	}
	core.SortMonthsDesc(months)
	return months
}

func normalizeDay(rd RawDay, raws []RawDetail, year int) core.ReportDay {
	day := core.ReportDay{
		Label: rd.DayLabel,
		Date:  core.DayDate(rd.DayLabel, year),
	}
	for _, det := range raws {
		day.Details = append(day.Details, det.payment())
	}
	day.Total = day.DeriveTotal()
	return day
}

// DropEmpty filters out months with no non-empty days. Display lists use
// this; trend series do not.
func DropEmpty(months []core.ReportMonth) []core.ReportMonth {
	out := months[:0:0]
	for _, m := range months {
		for _, d := range m.Days {
			if !d.Empty() {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Details flattens all payment details across months, newest day first,
// for aggregation and export.
func Details(months []core.ReportMonth) []core.PaymentDetail {
	var out []core.PaymentDetail
	for _, m := range months {
		for _, d := range m.Days {
			out = append(out, d.Details...)
		}
	}
	return out
}

// FallbackYear picks the year a range query implies, defaulting to the
// current year for unbounded ranges (matching the backend's default).
func FallbackYear(r core.DateRange, now time.Time) int {
	if !r.Start.IsZero() {
		return r.Start.Year()
	}
	return now.Year()
}
