package core

import "testing"

func peso(p float64) Money { return ParseAmount(p) }

func TestGroupByVendorScenario(t *testing.T) {
	details := []PaymentDetail{
		{VendorName: "A", StallNumber: "5", Amount: peso(100)},
		{VendorName: "A", StallNumber: "6", Amount: peso(50)},
		{VendorName: "B", StallNumber: "7", Amount: peso(75)},
	}

	groups := GroupBy(details, KeyByVendor)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	a, b := groups[0], groups[1]
	if a.Key != "A" || b.Key != "B" {
		t.Fatalf("first-seen order broken: %q, %q", a.Key, b.Key)
	}
	if a.Amount != peso(150) {
		t.Errorf("group A amount = %v, want 150.00", a.Amount.Pesos())
	}
	if len(a.Stalls) != 2 || a.Stalls[0] != "5" || a.Stalls[1] != "6" {
		t.Errorf("group A stalls = %v, want [5 6]", a.Stalls)
	}
	if b.Amount != peso(75) || len(b.Stalls) != 1 || b.Stalls[0] != "7" {
		t.Errorf("group B = %+v", b)
	}
	if GrandTotal(groups) != peso(225) {
		t.Errorf("grand total = %v, want 225.00", GrandTotal(groups).Pesos())
	}
}

func TestGroupByPreservesTotal(t *testing.T) {
	details := []PaymentDetail{
		{Collector: "Cruz", ReceivedBy: "Reyes", Amount: peso(10.25)},
		{Collector: "Cruz", ReceivedBy: "Reyes", Amount: peso(0.75)},
		{Collector: "Santos", ReceivedBy: "Reyes", Amount: peso(300)},
		{Collector: "Cruz", ReceivedBy: "Lim", Amount: peso(42.42)},
		{Collector: "Santos", ReceivedBy: "Reyes", Amount: peso(0.01)},
	}
	groups := GroupBy(details, DepartmentKey(Wharf))
	if GrandTotal(groups) != SumDetails(details) {
		t.Fatalf("grouping changed the total: %d vs %d",
			GrandTotal(groups).Centavos, SumDetails(details).Centavos)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 collector+receiver groups, got %d", len(groups))
	}
}

func TestGroupByKeepsDuplicateStalls(t *testing.T) {
	details := []PaymentDetail{
		{VendorName: "A", StallNumber: "5", Amount: peso(1)},
		{VendorName: "A", StallNumber: "5", Amount: peso(2)},
		{VendorName: "A", StallNumber: "9", Amount: peso(3)},
	}
	groups := GroupBy(details, KeyByVendor)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	stalls := groups[0].Stalls
	if len(stalls) != 3 || stalls[0] != "5" || stalls[1] != "5" || stalls[2] != "9" {
		t.Fatalf("stalls = %v, want [5 5 9] (duplicates preserved, first-seen order)", stalls)
	}
}

func TestDepartmentKey(t *testing.T) {
	d := PaymentDetail{
		VendorName:  "Dela Cruz",
		PaymentType: "daily",
		Section:     "Dry Goods",
		Collector:   "Cruz",
		ReceivedBy:  "Reyes",
		Customer:    "Mang Ben",
		Animal:      "hog",
		PaymentDate: "2026-08-01",
	}
	cases := []struct {
		dept Department
		want string
	}{
		{Market, "Dela Cruz|daily|Dry Goods|Cruz|Reyes"},
		{Wharf, "Cruz|Reyes"},
		{Motorpool, "Cruz|Reyes"},
		{Slaughter, "Mang Ben|hog|2026-08-01"},
	}
	for _, tc := range cases {
		t.Run(string(tc.dept), func(t *testing.T) {
			if got := DepartmentKey(tc.dept)(d); got != tc.want {
				t.Errorf("key = %q, want %q", got, tc.want)
			}
		})
	}
}
