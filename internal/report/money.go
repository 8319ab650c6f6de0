package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency, or an unknown one, is given.
const DefaultCurrency = "ILS"

// currency returns the go-money definition for code, falling back to
// DefaultCurrency.
func currency(code string) *money.Currency {
	if c := money.GetCurrency(code); c != nil {
		return c
	}
	return money.GetCurrency(DefaultCurrency)
}

// FormatMoney renders amount in the currency's display format. Amounts are
// rounded half away from zero to the currency's minor unit; the ledger
// itself keeps full precision.
func FormatMoney(amount float64, code string) string {
	cur := currency(code)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
