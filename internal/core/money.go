// Package core provides the domain types shared by every layer.
//
// This file contains the fixed-point Money type. Amounts are held as decimals
// quantized to two fractional digits and never pass through binary floats.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-float monetary amount with exactly two fractional digits.
type Money struct {
	d decimal.Decimal
}

// NewMoney quantizes d to cents, rounding half away from zero.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// ParseMoney converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative
// values are rejected; zero is allowed.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("5")      -> 5.00
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := NewMoney(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// maxCents is the largest amount that fits the int64 cents column.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// Validate rejects negative amounts and amounts too large to store as cents.
func (m Money) Validate() error {
	if m.d.IsNegative() {
		return ErrInvalidAmount
	}
	if m.d.Shift(2).GreaterThan(maxCents) {
		return fmt.Errorf("%w: %s exceeds the storable maximum", ErrInvalidAmount, m)
	}
	return nil
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(2).Round(0).IntPart()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed-point string such as "12.50".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
