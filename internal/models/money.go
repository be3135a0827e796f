package models

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for monetary values.
const MoneyPlaces = 2

// RatePlaces is the number of fractional digits kept for exchange rates.
const RatePlaces = 8

// Money represents a monetary value with currency.
// Amounts are always held rounded HALF-UP to MoneyPlaces.
type Money struct {
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Currency string          `json:"currency" yaml:"currency"`
}

// RoundHalfUp rounds d to places, halves away from zero.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// NewMoney creates a new Money instance with the given amount and currency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   RoundHalfUp(amount, MoneyPlaces),
		Currency: strings.ToUpper(currency),
	}
}

// NewMoneyFromString creates a new Money instance from a string amount
func NewMoneyFromString(amount, currency string) (Money, error) {
	dec, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string '%s': %w", amount, err)
	}
	return NewMoney(dec, currency), nil
}

// MustMoney is NewMoneyFromString for literals known to be valid.
func MustMoney(amount, currency string) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a Money instance with zero amount in the given currency
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Add adds another Money value to this one.
// Returns an error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.Currency, other.Currency)
	}
	return NewMoney(m.Amount.Add(other.Amount), m.Currency), nil
}

// Percent returns pct percent of m, rounded HALF-UP.
func (m Money) Percent(pct decimal.Decimal) Money {
	return NewMoney(m.Amount.Mul(pct).Div(decimal.NewFromInt(100)), m.Currency)
}

// Convert multiplies m by rate and expresses the result in currency.
func (m Money) Convert(rate decimal.Decimal, currency string) Money {
	return NewMoney(m.Amount.Mul(rate), currency)
}

// Equal returns true if two Money values are equal (same amount and currency).
// Amounts are compared exactly, there is no tolerance.
func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && m.Currency == other.Currency
}

// String returns a string representation of the money value
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(MoneyPlaces), m.Currency)
}

// Display formats m with the currency's symbol and grouping, e.g. "$1,234.56".
// Unknown currencies fall back to String.
func (m Money) Display() string {
	cur := money.GetCurrency(m.Currency)
	if cur == nil {
		return m.String()
	}
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// SumMoney adds up amounts that must all share currency.
func SumMoney(currency string, amounts ...Money) (Money, error) {
	total := ZeroMoney(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// ValidCurrency reports whether code is a known ISO 4217 currency code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	return money.GetCurrency(strings.ToUpper(code)) != nil
}
