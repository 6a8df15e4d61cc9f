package core

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// monthNames is the canonical month table. The reporting API labels months
// by name, not index, so ordering has to go through this table.
var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthNames returns the canonical month table, January first.
func MonthNames() []string {
	out := make([]string, len(monthNames))
	copy(out, monthNames)
	return out
}

// MonthIndex resolves a month name to its 1-based calendar index. Full
// names and three-letter abbreviations are accepted, case-insensitively.
func MonthIndex(name string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return 0, ErrUnknownMonth
	}
	for i, m := range monthNames {
		lm := strings.ToLower(m)
		if n == lm || (len(n) == 3 && strings.HasPrefix(lm, n)) {
			return i + 1, nil
		}
	}
	return 0, ErrUnknownMonth
}

// SortMonthsDesc orders report months by recency, newest first: year
// descending, then calendar index descending. Months whose name is not in
// the canonical table sink to the end in their incoming order.
func SortMonthsDesc(months []ReportMonth) {
	sort.SliceStable(months, func(i, j int) bool {
		mi, erri := MonthIndex(months[i].Name)
		mj, errj := MonthIndex(months[j].Name)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return mi > mj
	})
}

// ParseDayLabel extracts the month and day from a report day label such as
// "(Mon) Nov 14". The weekday prefix is optional; ok is false when no
// month+day pair is recognizable.
func ParseDayLabel(label string) (month int, day int, ok bool) {
	fields := strings.Fields(label)
	for i := 0; i < len(fields)-1; i++ {
		m, err := MonthIndex(strings.Trim(fields[i], "()., "))
		if err != nil {
			continue
		}
		d, err := strconv.Atoi(strings.Trim(fields[i+1], "()., "))
		if err != nil || d < 1 || d > 31 {
			continue
		}
		return m, d, true
	}
	return 0, 0, false
}

// DayDate resolves a day label against its month's year. Labels that do
// not parse get the zero time, which sorts last.
func DayDate(label string, year int) time.Time {
	m, d, ok := ParseDayLabel(label)
	if !ok {
		return time.Time{}
	}
	return time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// SortDaysDesc orders day rows newest first by their parsed label dates.
// Unparseable labels keep their incoming order at the end.
func SortDaysDesc(days []ReportDay) {
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].Date.IsZero() || days[j].Date.IsZero() {
			return days[j].Date.IsZero() && !days[i].Date.IsZero()
		}
		return days[i].Date.After(days[j].Date)
	})
}
