package sales

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = money.BRL

// FormatMoney renders an amount with the currency's symbol and separators,
// rounded to the currency's fraction digits.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	// the constructor is the only way to get a non nil currency
	cur := money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		// beyond what go-money can hold
		return cur.Code + " " + amount.StringFixed(int32(cur.Fraction))
	}
	return money.New(minor.IntPart(), currency).Display()
}
