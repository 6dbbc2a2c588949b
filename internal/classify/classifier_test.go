package classify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var asOf2025 = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func TestClassify_Small(t *testing.T) {
	result, err := Classify(Input{
		Turnover:               decimal.NewFromInt(45_000_000),
		FixedAssets:            decimal.NewFromInt(200_000_000),
		IsProfessionalServices: false,
	}, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Classification != ClassificationSmall {
		t.Errorf("classification: want %s, got %s", ClassificationSmall, result.Classification)
	}
	if !result.CITExempt {
		t.Error("expected CIT exempt")
	}
	if result.DevLevyApplicable {
		t.Error("expected development levy not applicable")
	}
	if !result.TaxImplications.CITRate.IsZero() {
		t.Errorf("CIT rate: want 0, got %s", result.TaxImplications.CITRate.String())
	}
	if !result.TaxImplications.DevLevyRate.IsZero() {
		t.Errorf("dev levy rate: want 0, got %s", result.TaxImplications.DevLevyRate.String())
	}
	if !result.TaxImplications.VATApplicable {
		t.Error("VAT must remain applicable for SMALL entities")
	}
	if result.FailureReason != "" {
		t.Errorf("failure reason: want empty, got %q", result.FailureReason)
	}
}

func TestClassify_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		turnover   int64
		assets     int64
		want       Classification
		failReason string
	}{
		{"both exactly at threshold", 50_000_000, 250_000_000, ClassificationSmall, ""},
		{"turnover one naira over", 50_000_001, 250_000_000, ClassificationStandard, FailReasonTurnover},
		{"assets one naira over", 50_000_000, 250_000_001, ClassificationStandard, FailReasonAssets},
		{"both over", 60_000_000, 300_000_000, ClassificationStandard, FailReasonBothThresholds},
		{"zero turnover and assets", 0, 0, ClassificationSmall, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Classify(Input{
				Turnover:    decimal.NewFromInt(tt.turnover),
				FixedAssets: decimal.NewFromInt(tt.assets),
			}, asOf2025)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Classification != tt.want {
				t.Errorf("classification: want %s, got %s", tt.want, result.Classification)
			}
			if result.FailureReason != tt.failReason {
				t.Errorf("failure reason: want %q, got %q", tt.failReason, result.FailureReason)
			}
		})
	}
}

func TestClassify_ProfessionalServicesAlwaysStandard(t *testing.T) {
	// Even a business comfortably under both thresholds is STANDARD when it
	// provides professional services.
	result, err := Classify(Input{
		Turnover:               decimal.NewFromInt(1_000_000),
		FixedAssets:            decimal.NewFromInt(5_000_000),
		IsProfessionalServices: true,
	}, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Classification != ClassificationStandard {
		t.Errorf("classification: want STANDARD, got %s", result.Classification)
	}
	if result.CITExempt {
		t.Error("professional services firms must not be CIT exempt")
	}
	if !result.DevLevyApplicable {
		t.Error("expected development levy applicable")
	}
	if result.FailureReason != FailReasonProfessionalServices {
		t.Errorf("failure reason: want %q, got %q", FailReasonProfessionalServices, result.FailureReason)
	}
	if len(result.Reasoning) == 0 || !strings.Contains(result.Reasoning[0], "Professional services") {
		t.Errorf("expected professional services as first reasoning step, got %v", result.Reasoning)
	}
}

func TestClassify_BothTestsRecordedOnFailure(t *testing.T) {
	// The reasoning trail must show both threshold comparisons even when
	// the first test already fails.
	result, err := Classify(Input{
		Turnover:    decimal.NewFromInt(80_000_000),
		FixedAssets: decimal.NewFromInt(100_000_000),
	}, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawTurnover, sawAssets bool
	for _, line := range result.Reasoning {
		if strings.Contains(line, "Turnover test") {
			sawTurnover = true
		}
		if strings.Contains(line, "Fixed assets test") {
			sawAssets = true
		}
	}
	if !sawTurnover || !sawAssets {
		t.Errorf("expected both threshold tests in reasoning, got %v", result.Reasoning)
	}

	if result.Thresholds.TurnoverMet {
		t.Error("turnover test should have failed")
	}
	if !result.Thresholds.AssetsMet {
		t.Error("assets test should have passed")
	}
}

func TestClassify_ReasoningIncludesAmounts(t *testing.T) {
	result, err := Classify(Input{
		Turnover:    decimal.NewFromInt(45_000_000),
		FixedAssets: decimal.NewFromInt(200_000_000),
	}, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(result.Reasoning, "\n")
	for _, want := range []string{"\u20a645,000,000.00", "\u20a650,000,000.00", "\u20a6200,000,000.00", "\u20a6250,000,000.00"} {
		if !strings.Contains(joined, want) {
			t.Errorf("reasoning missing %q:\n%s", want, joined)
		}
	}
}

func TestClassify_StandardRatesByYear(t *testing.T) {
	tests := []struct {
		year        int
		wantCIT     string
		wantDevLevy string
	}{
		{2025, "0.275", "0.04"},
		{2026, "0.25", "0.04"},
		{2027, "0.25", "0.03"},
		{2029, "0.25", "0.03"},
		{2030, "0.25", "0.02"},
		{2035, "0.25", "0.02"},
	}

	for _, tt := range tests {
		t.Run(time.Date(tt.year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006"), func(t *testing.T) {
			result, err := Classify(Input{
				Turnover:    decimal.NewFromInt(120_000_000),
				FixedAssets: decimal.NewFromInt(10_000_000),
			}, time.Date(tt.year, 3, 1, 0, 0, 0, 0, time.UTC))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.TaxImplications.CITRate.String() != tt.wantCIT {
				t.Errorf("CIT rate: want %s, got %s", tt.wantCIT, result.TaxImplications.CITRate.String())
			}
			if result.TaxImplications.DevLevyRate.String() != tt.wantDevLevy {
				t.Errorf("dev levy rate: want %s, got %s", tt.wantDevLevy, result.TaxImplications.DevLevyRate.String())
			}
		})
	}
}

func TestClassify_NegativeInputRejected(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"negative turnover", Input{Turnover: decimal.NewFromInt(-1)}, "turnover"},
		{"negative assets", Input{FixedAssets: decimal.NewFromInt(-500)}, "fixed_assets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.input, asOf2025)
			if err == nil {
				t.Fatal("expected error for negative input")
			}
			var invErr *InvalidInputError
			if !errors.As(err, &invErr) {
				t.Fatalf("expected InvalidInputError, got %T", err)
			}
			if invErr.Field != tt.field {
				t.Errorf("field: want %q, got %q", tt.field, invErr.Field)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	input := Input{
		Turnover:    decimal.NewFromInt(45_000_000),
		FixedAssets: decimal.NewFromInt(200_000_000),
	}

	first, err := Classify(input, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Classify(input, asOf2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Classification != second.Classification {
		t.Error("classification changed between identical calls")
	}
	if len(first.Reasoning) != len(second.Reasoning) {
		t.Fatal("reasoning length changed between identical calls")
	}
	for i := range first.Reasoning {
		if first.Reasoning[i] != second.Reasoning[i] {
			t.Errorf("reasoning[%d] differs: %q vs %q", i, first.Reasoning[i], second.Reasoning[i])
		}
	}
}
