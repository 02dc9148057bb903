// Package core provides money parsing and handling utilities.
//
// Amounts are kept as exact decimals and carried on the wire as bare JSON numbers.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount with no currency attached.
type Money struct {
	decimal.Decimal
}

// NewMoney builds a Money from a float, mostly for tests and fixtures.
func NewMoney(v float64) Money {
	return Money{Decimal: decimal.NewFromFloat(v)}
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// ParseAmount converts a user-entered amount to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs, zero and malformed input
// are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		// decimal accepts exponents; a form field should not
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := Money{Decimal: d.Round(2)}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate rejects zero and negative amounts.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Equal compares by numeric value, so 10 and 10.00 are equal.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Float returns the amount as a float64 for display and charting.
func (m Money) Float() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// Display formats the amount with two decimals.
func (m Money) Display() string {
	return m.StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	m.Decimal = d
	return nil
}
