package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount to display in a currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns the Money to display value in currency.
func M(value decimal.Decimal, currency string) Money { return Money{value: value, cur: currency} }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String formats the amount with the currency symbol, rounded to the currency minor unit.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func (m Money) IsZero() bool { return m.value.IsZero() }

// Percent is a percentage to display.
type Percent decimal.Decimal

// String returns the percentage with one decimal, e.g. "33.3%".
func (p Percent) String() string { return decimal.Decimal(p).StringFixed(1) + "%" }
