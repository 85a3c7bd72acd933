// Package core provides money parsing and handling utilities.
//
// Money is an exact decimal quantity. Arithmetic never goes through binary
// floating point; Float64 exists for display formatting only.
package core

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the configured currency.
type Money struct {
	Value decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{Value: decimal.Zero}

// ParseMoney converts a user-entered decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// every fractional digit. Only strictly positive amounts are accepted.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34, nil
//	ParseMoney("12,345") -> 12.345, nil
//	ParseMoney("-1")     -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			// Signs, exponents and thousands separators are rejected
			return Money{}, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Value: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MustMoney is ParseMoney for literals known to be valid. It panics otherwise.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

// MoneyFromDecimal wraps an existing decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func (m Money) Validate() error {
	if !m.Value.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Value: m.Value.Add(o.Value)} }

func (m Money) Sub(o Money) Money { return Money{Value: m.Value.Sub(o.Value)} }

func (m Money) IsPositive() bool { return m.Value.IsPositive() }

func (m Money) IsZero() bool { return m.Value.IsZero() }

// Equal compares by numeric value, so 5 and 5.00 are equal.
func (m Money) Equal(o Money) bool { return m.Value.Equal(o.Value) }

func (m Money) Cmp(o Money) int { return m.Value.Cmp(o.Value) }

// String renders the amount with at least two fractional digits.
func (m Money) String() string {
	if m.Value.Exponent() < -2 {
		return m.Value.String()
	}
	return m.Value.StringFixed(2)
}

// Float64 returns the amount as a float64 for display purposes.
// Use the decimal Value for calculations.
func (m Money) Float64() float64 {
	return m.Value.InexactFloat64()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number. Numbers are
// read from their literal text, never through float64.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = Money{Value: d}
	return nil
}
