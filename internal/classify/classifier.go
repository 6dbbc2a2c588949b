// Package classify decides whether a business qualifies as a SMALL company
// under the Nigeria Tax Act and derives the resulting CIT exemption,
// development levy liability, and applicable rates.
//
// Classification is a pure function of the input and the as-of date: no
// I/O, no wall-clock reads, no shared state. Callers at the HTTP boundary
// supply time.Now; tests supply fixed dates.
package classify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxpadi/api/internal/money"
)

// Classify evaluates the small-company tests and returns a complete,
// self-contained result with an auditable reasoning trail.
//
// The rules, in order:
//  1. Professional services firms are STANDARD regardless of thresholds.
//  2. Otherwise both threshold tests are evaluated and recorded, even when
//     the first already fails, so the reasoning trail shows both.
//  3. SMALL requires both tests to pass. SMALL entities are CIT exempt and
//     pay no development levy; STANDARD entities take the scheduled rates
//     for asOf's calendar year.
//
// VAT liability is orthogonal to the income tax exemption: both categories
// remain VAT-applicable.
func Classify(input Input, asOf time.Time) (Result, error) {
	if input.Turnover.IsNegative() {
		return Result{}, &InvalidInputError{Field: "turnover", Message: "must not be negative"}
	}
	if input.FixedAssets.IsNegative() {
		return Result{}, &InvalidInputError{Field: "fixed_assets", Message: "must not be negative"}
	}

	year := asOf.Year()

	if input.IsProfessionalServices {
		reasoning := []string{
			"Professional services firms cannot qualify as SMALL; classified as STANDARD regardless of turnover and assets.",
		}
		return buildStandardResult(input, year, reasoning, FailReasonProfessionalServices), nil
	}

	turnoverMet := input.Turnover.LessThanOrEqual(TurnoverThreshold)
	assetsMet := input.FixedAssets.LessThanOrEqual(AssetsThreshold)

	var reasoning []string
	if turnoverMet {
		reasoning = append(reasoning, fmt.Sprintf(
			"Turnover test passed: %s is within the %s threshold.",
			money.Format(input.Turnover), money.Format(TurnoverThreshold)))
	} else {
		reasoning = append(reasoning, fmt.Sprintf(
			"Turnover test failed: %s exceeds the %s threshold.",
			money.Format(input.Turnover), money.Format(TurnoverThreshold)))
	}
	if assetsMet {
		reasoning = append(reasoning, fmt.Sprintf(
			"Fixed assets test passed: %s is within the %s threshold.",
			money.Format(input.FixedAssets), money.Format(AssetsThreshold)))
	} else {
		reasoning = append(reasoning, fmt.Sprintf(
			"Fixed assets test failed: %s exceeds the %s threshold.",
			money.Format(input.FixedAssets), money.Format(AssetsThreshold)))
	}

	snapshot := ThresholdSnapshot{
		TurnoverThreshold: TurnoverThreshold,
		AssetsThreshold:   AssetsThreshold,
		TurnoverMet:       turnoverMet,
		AssetsMet:         assetsMet,
	}

	if turnoverMet && assetsMet {
		reasoning = append(reasoning,
			"Both tests passed: classified as SMALL. Exempt from company income tax; development levy not applicable. VAT obligations still apply.")
		return Result{
			Classification:    ClassificationSmall,
			CITExempt:         true,
			DevLevyApplicable: false,
			Reasoning:         reasoning,
			Thresholds:        snapshot,
			TaxImplications: TaxImplications{
				CITRate:       decimal.Zero,
				DevLevyRate:   decimal.Zero,
				VATApplicable: true,
			},
		}, nil
	}

	failReason := FailReasonBothThresholds
	switch {
	case !turnoverMet && assetsMet:
		failReason = FailReasonTurnover
	case turnoverMet && !assetsMet:
		failReason = FailReasonAssets
	}

	result := buildStandardResult(input, year, reasoning, failReason)
	result.Thresholds = snapshot
	return result, nil
}

// buildStandardResult assembles a STANDARD classification with the
// scheduled rates for the evaluation year appended to the reasoning trail.
func buildStandardResult(input Input, year int, reasoning []string, failReason string) Result {
	citRate := CITRate(year)
	devLevyRate := DevLevyRate(year)

	reasoning = append(reasoning, fmt.Sprintf(
		"Classified as STANDARD for %d: company income tax at %s, development levy at %s.",
		year, money.FormatPercent(citRate), money.FormatPercent(devLevyRate)))

	return Result{
		Classification:    ClassificationStandard,
		CITExempt:         false,
		DevLevyApplicable: true,
		Reasoning:         reasoning,
		Thresholds: ThresholdSnapshot{
			TurnoverThreshold: TurnoverThreshold,
			AssetsThreshold:   AssetsThreshold,
			TurnoverMet:       input.Turnover.LessThanOrEqual(TurnoverThreshold),
			AssetsMet:         input.FixedAssets.LessThanOrEqual(AssetsThreshold),
		},
		TaxImplications: TaxImplications{
			CITRate:       citRate,
			DevLevyRate:   devLevyRate,
			VATApplicable: true,
		},
		FailureReason: failReason,
	}
}
