package core

import "strings"

// KeyFunc derives the composite grouping key for a payment detail. Each
// department groups its report rows by a different business key.
type KeyFunc func(PaymentDetail) string

// GroupBy folds payment details into groups keyed by fn, preserving
// first-seen key order. The first record seeds the group; repeats add
// their amount and, when a stall number is present, append it to Stalls
// (duplicates intentionally kept).
func GroupBy(details []PaymentDetail, fn KeyFunc) []Group {
	index := make(map[string]int, len(details))
	groups := make([]Group, 0, len(details))
	for _, d := range details {
		key := fn(d)
		i, seen := index[key]
		if !seen {
			g := Group{Key: key, First: d, Amount: d.Amount}
			if d.StallNumber != "" {
				g.Stalls = []string{d.StallNumber}
			}
			g.Entries = []PaymentDetail{d}
			index[key] = len(groups)
			groups = append(groups, g)
			continue
		}
		groups[i].Amount = groups[i].Amount.Add(d.Amount)
		if d.StallNumber != "" {
			groups[i].Stalls = append(groups[i].Stalls, d.StallNumber)
		}
		groups[i].Entries = append(groups[i].Entries, d)
	}
	return groups
}

// GrandTotal sums group amounts. Grouping preserves the flat total, so
// this equals the sum over the source details.
func GrandTotal(groups []Group) Money {
	var sum Money
	for _, g := range groups {
		sum = sum.Add(g.Amount)
	}
	return sum
}

// SumDetails sums amounts over a flat detail slice.
func SumDetails(details []PaymentDetail) Money {
	var sum Money
	for _, d := range details {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// DepartmentKey returns the grouping key function used by a department's
// report tables:
//
//	market            vendor + payment type + section + collector + receiver
//	wharf, motorpool  collector + receiver
//	slaughter         customer + animal + payment date
//
// Combined falls back to the collector+receiver key shared by the
// single-stream views.
func DepartmentKey(dept Department) KeyFunc {
	switch dept {
	case Market:
		return func(d PaymentDetail) string {
			return compositeKey(d.VendorName, d.PaymentType, d.Section, d.Collector, d.ReceivedBy)
		}
	case Slaughter:
		return func(d PaymentDetail) string {
			return compositeKey(d.Customer, d.Animal, d.PaymentDate)
		}
	default:
		return func(d PaymentDetail) string {
			return compositeKey(d.Collector, d.ReceivedBy)
		}
	}
}

// KeyByVendor groups by vendor name alone, used by vendor-facing stall
// summaries.
func KeyByVendor(d PaymentDetail) string {
	return strings.TrimSpace(d.VendorName)
}

func compositeKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "|")
}
