// Package money formats amounts for people to read.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// VND formats whole dong with thousands separators, e.g. "1,250,000 ₫".
func VND(amount int64) string {
	return printer.Sprintf("%d ₫", amount)
}

// Amount formats an amount in its original currency, e.g. "12.50 USD".
// VND amounts are shown without decimals.
func Amount(amount decimal.Decimal, currency string) string {
	if currency == "VND" {
		return VND(amount.Round(0).IntPart())
	}

	return amount.StringFixed(2) + " " + currency
}

// Percent formats a percentage with one decimal, e.g. "75.0%".
func Percent(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}
