// Package report ingests raw reporting-API envelopes and normalizes them
// into core report months: amounts coerced, missing department
// sub-objects default-filled, day totals re-derived, months and days
// sorted into canonical recency-descending order.
package report

import (
	"singil/internal/core"
)

// RawEnvelope mirrors the reporting endpoints' wire shape:
// { months: [ { month, days: [ { day_label, total_amount, details } ] } ] }.
// All amount fields decode through core.Money's tolerant coercion.
type RawEnvelope struct {
	Months []RawMonth `json:"months"`
}

type RawMonth struct {
	Month string   `json:"month"`
	Year  int      `json:"year,omitempty"`
	Days  []RawDay `json:"days"`
}

// RawDay carries either a flat detail list (single-department reports) or
// per-department sub-objects (the combined report). Sub-objects are
// pointers so that absence is detectable and default-fillable in one
// place instead of ad hoc null-checks per screen.
type RawDay struct {
	DayLabel    string      `json:"day_label"`
	TotalAmount core.Money  `json:"total_amount"`
	Details     []RawDetail `json:"details"`

	Market    *RawDeptBlock `json:"market,omitempty"`
	Wharf     *RawDeptBlock `json:"wharf,omitempty"`
	Motorpool *RawDeptBlock `json:"motorpool,omitempty"`
	Slaughter *RawDeptBlock `json:"slaughter,omitempty"`
}

// RawDeptBlock is one department's slice of a combined-report day.
type RawDeptBlock struct {
	TotalAmount core.Money  `json:"total_amount"`
	Details     []RawDetail `json:"details"`
}

// RawDetail is a flat payment record. The backend is inconsistent about
// field names across departments ("amount" vs "total_amount", "customer"
// vs "customer_name"), so both spellings decode and accessors pick.
type RawDetail struct {
	Amount      core.Money `json:"amount"`
	TotalAmount core.Money `json:"total_amount"`
	PaymentDate string     `json:"payment_date"`
	VendorName  string     `json:"vendor_name"`
	StallNumber string     `json:"stall_number"`
	Section     string     `json:"section"`
	PaymentType string     `json:"payment_type"`
	Collector   string     `json:"collector"`
	ReceivedBy  string     `json:"received_by"`
	Customer    string     `json:"customer"`
	CustomerAlt string     `json:"customer_name"`
	Animal      string     `json:"animal"`
	AnimalAlt   string     `json:"animal_type"`
}

func (d RawDetail) amount() core.Money {
	if d.Amount.Centavos != 0 {
		return d.Amount
	}
	return d.TotalAmount
}

func (d RawDetail) customer() string {
	if d.Customer != "" {
		return d.Customer
	}
	return d.CustomerAlt
}

func (d RawDetail) animal() string {
	if d.Animal != "" {
		return d.Animal
	}
	return d.AnimalAlt
}

// payment converts a raw record to the core type.
func (d RawDetail) payment() core.PaymentDetail {
	return core.PaymentDetail{
		Amount:      d.amount(),
		PaymentDate: d.PaymentDate,
		VendorName:  d.VendorName,
		StallNumber: d.StallNumber,
		Section:     d.Section,
		PaymentType: d.PaymentType,
		Collector:   d.Collector,
		ReceivedBy:  d.ReceivedBy,
		Customer:    d.customer(),
		Animal:      d.animal(),
	}
}

// dept returns the day's sub-object for a department, default-filled when
// the backend omitted it.
func (d RawDay) dept(dept core.Department) RawDeptBlock {
	var p *RawDeptBlock
	switch dept {
	case core.Market:
		p = d.Market
	case core.Wharf:
		p = d.Wharf
	case core.Motorpool:
		p = d.Motorpool
	case core.Slaughter:
		p = d.Slaughter
	}
	if p == nil {
		return RawDeptBlock{}
	}
	return *p
}
