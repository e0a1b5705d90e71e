package domain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise for INR, cents for USD).
// Stored as an int64 in MongoDB; rendered as a major-unit decimal in JSON.
type Money int64

// minorUnitExp is the number of fractional digits carried by Money.
const minorUnitExp = 2

// MaxMoney bounds every parsed amount: one hundred billion major units.
const MaxMoney Money = 100_000_000_000 * 100

var ErrMoneyOutOfRange = errors.New("amount out of range")

// NewMoney builds a Money value from whole major units (e.g. rupees).
func NewMoney(major int64) Money {
	return Money(major * 100)
}

// ParseMoney parses a major-unit decimal string such as "1500" or "1499.50".
// More than two fractional digits is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	minor := d.Shift(minorUnitExp)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), minorUnitExp)
	}
	if minor.Abs().GreaterThan(decimal.New(int64(MaxMoney), 0)) {
		return 0, fmt.Errorf("%w: %s", ErrMoneyOutOfRange, d.String())
	}
	return Money(minor.IntPart()), nil
}

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExp)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExp)
}

func (m Money) IsNegative() bool { return m < 0 }

// MarshalJSON writes the amount as a JSON number in major units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	v, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
