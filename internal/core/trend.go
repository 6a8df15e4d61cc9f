package core

// TrendPoint is one month's total in a 12-point trend series.
type TrendPoint struct {
	Month string `json:"month"`
	Total Money  `json:"total"`
}

// TrendSeries builds the full-calendar trend for one year of report
// months: always 12 points, January first, zero for absent or empty
// months. Display lists drop empty months; trend charts never do.
func TrendSeries(months []ReportMonth) []TrendPoint {
	totals := make(map[int]Money, len(months))
	for _, m := range months {
		idx, err := MonthIndex(m.Name)
		if err != nil {
			continue
		}
		totals[idx] = totals[idx].Add(m.Total())
	}
	series := make([]TrendPoint, 0, 12)
	for i, name := range monthNames {
		series = append(series, TrendPoint{Month: name, Total: totals[i+1]})
	}
	return series
}
