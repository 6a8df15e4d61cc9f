package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   any
		out  int64
	}{
		{"peso formatted", "₱1,234.50", 123450},
		{"plain string", "1234.50", 123450},
		{"float", 1234.5, 123450},
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"int", 75, 7500},
		{"negative string", "-12.34", -1234},
		{"currency with spaces", " ₱ 2,000 ", 200000},
		{"garbage", "n/a", 0},
		{"third decimal rounds half-up", "1.005", 101},
		{"already money is a no-op", Money{Centavos: 555}, 555},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAmount(tc.in)
			if got.Centavos != tc.out {
				t.Fatalf("ParseAmount(%v) = %d centavos, want %d", tc.in, got.Centavos, tc.out)
			}
		})
	}
}

func TestParseAmountIdempotent(t *testing.T) {
	// Re-coercing an already-coerced value must not change it.
	first := ParseAmount("₱1,234.50")
	second := ParseAmount(first.Pesos())
	if first != second {
		t.Fatalf("coercion not idempotent: %d vs %d", first.Centavos, second.Centavos)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{123450, "₱1,234.50"},
		{0, "₱0.00"},
		{5, "₱0.05"},
		{100000000, "₱1,000,000.00"},
		{-9950, "-₱99.50"},
	}
	for _, tc := range cases {
		if got := (Money{Centavos: tc.cents}).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		out  int64
		fail bool
	}{
		{`"₱1,234.50"`, 123450, false},
		{`1234.5`, 123450, false},
		{`"1234.50"`, 123450, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`true`, 0, true},
	}
	for _, tc := range cases {
		var m Money
		err := m.UnmarshalJSON([]byte(tc.in))
		if tc.fail {
			if err == nil {
				t.Errorf("UnmarshalJSON(%s) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("UnmarshalJSON(%s) unexpected error: %v", tc.in, err)
			continue
		}
		if m.Centavos != tc.out {
			t.Errorf("UnmarshalJSON(%s) = %d centavos, want %d", tc.in, m.Centavos, tc.out)
		}
	}
}
