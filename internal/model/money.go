package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for monetary values.
const MoneyScale = 2

// Money is a fixed-point amount. It is stored as a decimal string and
// serialized to JSON as a plain number.
type Money struct {
	decimal.Decimal
}

// NewMoney parses s as a monetary amount.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Money{d.Round(MoneyScale)}, nil
}

// MustMoney is NewMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalJSON writes the amount as an unquoted number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(MoneyScale)), nil
}

// UnmarshalJSON accepts both numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	if err := m.Decimal.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(MoneyScale)
	return nil
}

// Value stores the amount as a fixed-point string.
func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(MoneyScale), nil
}

// Scan reads an amount stored by Value.
func (m *Money) Scan(src any) error {
	return m.Decimal.Scan(src)
}
