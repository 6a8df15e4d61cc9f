// Package core holds the domain model of the revenue reporting pipeline:
// peso amounts, payment records, grouping, pagination and trend series.
//
// This file contains peso parsing and formatting. Amounts are held as
// centavo fixed-point (int64) so that aggregation is exact; floats appear
// only at the display boundary.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a peso amount in centavos.
type Money struct {
	Centavos int64
}

// ParseAmount coerces an amount-like value from the reporting API into
// Money. The backend is loose about amount fields: they arrive as plain
// numbers, numeric strings, or formatted strings with a peso sign and
// thousands separators ("₱1,234.50"). Unparseable or absent values coerce
// to zero rather than failing, matching how report screens treat them.
//
// Examples:
//
//	ParseAmount("₱1,234.50") -> 123450 centavos
//	ParseAmount("1234.50")   -> 123450 centavos
//	ParseAmount(1234.5)      -> 123450 centavos
//	ParseAmount(nil)         -> 0 centavos
func ParseAmount(v any) Money {
	switch x := v.(type) {
	case nil:
		return Money{}
	case Money:
		return x
	case int:
		return Money{Centavos: int64(x) * 100}
	case int64:
		return Money{Centavos: x * 100}
	case float64:
		return fromFloat(x)
	case json.Number:
		m, err := parseDecimal(x.String())
		if err != nil {
			return Money{}
		}
		return m
	case string:
		m, err := parseDecimal(stripCurrency(x))
		if err != nil {
			return Money{}
		}
		return m
	default:
		return Money{}
	}
}

// ParseAmountStrict is ParseAmount for callers that must distinguish a
// genuine zero from garbage input (CLI flags, config).
func ParseAmountStrict(s string) (Money, error) {
	m, err := parseDecimal(stripCurrency(s))
	if err != nil {
		return Money{}, err
	}
	return m, nil
}

// stripCurrency drops everything except digits, the decimal point and a
// sign, tolerating peso signs, thousands separators and stray whitespace.
func stripCurrency(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseDecimal converts a decimal string to centavos with half-up rounding
// on the third decimal place.
func parseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	cents := iv*100 + frac
	if neg {
		cents = -cents
	}
	return Money{Centavos: cents}, nil
}

func fromFloat(f float64) Money {
	neg := f < 0
	if neg {
		f = -f
	}
	cents := int64(f*100 + 0.5)
	if neg {
		cents = -cents
	}
	return Money{Centavos: cents}
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Centavos: m.Centavos + o.Centavos}
}

// Pesos returns the peso value as a float64 for display and JSON payloads.
// Use centavos for arithmetic.
func (m Money) Pesos() float64 {
	return float64(m.Centavos) / 100.0
}

// Format renders the amount in the portal's display style: peso sign,
// thousands separators, two decimals.
func (m Money) Format() string {
	cents := m.Centavos
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return fmt.Sprintf("%s₱%s.%02d", sign, b.String(), frac)
}

// UnmarshalJSON accepts numbers, numeric strings, formatted peso strings
// and null, coercing all of them through ParseAmount.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		m.Centavos = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*m = ParseAmount(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*m = ParseAmount(num)
	return nil
}

// MarshalJSON emits the peso value as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Pesos(), 'f', 2, 64)), nil
}
