// Package vat computes Nigerian VAT over invoices: per-line rates with
// basic-item zero-rating, invoice totals, and net period positions with
// carry-forward credit.
//
// Everything in this package is a pure function of its arguments. Rates
// vary by calendar year through an explicitly-dated schedule; there is no
// hidden "current rate" state and no wall-clock read.
package vat

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// vatRateBand is one row of the statutory VAT rate schedule. A band
// applies from FromYear until the next band's FromYear.
type vatRateBand struct {
	FromYear int
	Rate     decimal.Decimal
}

// rateSchedule holds the standard VAT rate by year, newest last. Rates are
// fractions (0.10 = 10%).
//
//	2025       10%
//	2026–2029  12.5%
//	2030+      15%
var rateSchedule = []vatRateBand{
	{FromYear: 2025, Rate: decimal.NewFromFloat(0.10)},
	{FromYear: 2026, Rate: decimal.NewFromFloat(0.125)},
	{FromYear: 2030, Rate: decimal.NewFromFloat(0.15)},
}

// RateForDate returns the standard VAT rate in force on the given date.
// Only the calendar year matters; dates before the schedule clamp to the
// first band.
func RateForDate(date time.Time) decimal.Decimal {
	year := date.Year()
	rate := rateSchedule[0].Rate
	for _, b := range rateSchedule {
		if year >= b.FromYear {
			rate = b.Rate
		}
	}
	return rate
}

// BasicItemKeywords is the staple-foods keyword table used to zero-rate
// line items. Matching is plain case-insensitive substring search: a
// description containing "rice" is basic even if it is "fried rice cooker".
// Package-level so jurisdictions can swap the list without touching the
// arithmetic.
var BasicItemKeywords = []string{
	"bread", "rice", "maize", "wheat", "millet", "barley", "sorghum", "oats",
	"beans", "milk", "fish", "meat", "chicken", "egg",
	"cooking oil", "palm oil", "vegetable oil",
	"salt", "yam", "cassava", "potato", "plantain", "garri", "honey", "flour",
}

// IsBasicItem reports whether the description matches the basic-item
// keyword table.
func IsBasicItem(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range BasicItemKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ApplicableRate returns the effective VAT rate for a description on a
// date: zero for basic items, otherwise the standard rate for the date.
func ApplicableRate(description string, date time.Time) decimal.Decimal {
	if IsBasicItem(description) {
		return decimal.Zero
	}
	return RateForDate(date)
}
