package utils

import (
	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount the way every screen and receipt shows
// it: dollar sign, two decimals, sign in front ("-$5.00").
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "-$" + rounded.Neg().StringFixed(2)
	}
	return "$" + rounded.StringFixed(2)
}

// FormatPercent renders a rate such as 7.5 as "7.5%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.String() + "%"
}
