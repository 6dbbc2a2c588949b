package classify

import "github.com/shopspring/decimal"

// Small-company thresholds under the Nigeria Tax Act: annual turnover at or
// below ₦50m and total fixed assets at or below ₦250m. Package-level values
// so a different jurisdiction's schedule can be swapped in without touching
// the classification logic.
var (
	TurnoverThreshold = decimal.NewFromInt(50_000_000)
	AssetsThreshold   = decimal.NewFromInt(250_000_000)
)

// rateBand is one row of the statutory rate schedule. A band applies from
// FromYear until the next band's FromYear.
type rateBand struct {
	FromYear    int
	CITRate     decimal.Decimal
	DevLevyRate decimal.Decimal
}

// rateSchedule holds the CIT and development levy rates by year, newest
// last. Rates are fractions (0.275 = 27.5%).
//
//	2025       CIT 27.5%  Dev Levy 4%
//	2026       CIT 25%    Dev Levy 4%
//	2027–2029  CIT 25%    Dev Levy 3%
//	2030+      CIT 25%    Dev Levy 2%
var rateSchedule = []rateBand{
	{FromYear: 2025, CITRate: decimal.NewFromFloat(0.275), DevLevyRate: decimal.NewFromFloat(0.04)},
	{FromYear: 2026, CITRate: decimal.NewFromFloat(0.25), DevLevyRate: decimal.NewFromFloat(0.04)},
	{FromYear: 2027, CITRate: decimal.NewFromFloat(0.25), DevLevyRate: decimal.NewFromFloat(0.03)},
	{FromYear: 2030, CITRate: decimal.NewFromFloat(0.25), DevLevyRate: decimal.NewFromFloat(0.02)},
}

// bandForYear returns the schedule band in force for the given calendar
// year. Years before the first band clamp to the first band.
func bandForYear(year int) rateBand {
	band := rateSchedule[0]
	for _, b := range rateSchedule {
		if year >= b.FromYear {
			band = b
		}
	}
	return band
}

// CITRate returns the company income tax rate for STANDARD entities in the
// given calendar year.
func CITRate(year int) decimal.Decimal {
	return bandForYear(year).CITRate
}

// DevLevyRate returns the development levy rate for STANDARD entities in
// the given calendar year.
func DevLevyRate(year int) decimal.Decimal {
	return bandForYear(year).DevLevyRate
}
