// Package money renders naira amounts and tax rates for display strings.
// The engine packages use it when building reasoning and summary text;
// all arithmetic stays in shopspring/decimal, formatting is boundary-only.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var hundred = decimal.NewFromInt(100)

// Format renders a naira amount with grouping separators and exactly two
// decimal places, e.g. ₦45,000,000.00. Amounts whose float64 conversion is
// not exact are grouped from the decimal's own digits instead, so display
// stays exact at any magnitude.
func Format(d decimal.Decimal) string {
	rounded := d.Round(2)
	if f, exact := rounded.Float64(); exact {
		return printer.Sprintf("₦%.2f", f)
	}
	return "₦" + groupDigits(rounded.StringFixed(2))
}

// groupDigits inserts thousands separators into a fixed-point decimal
// string such as -1234567.89.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}
	return sign + b.String() + "." + frac
}

// FormatPercent renders a fractional rate as a percentage, e.g. 0.275 -> 27.5%.
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}
