package classify

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Classification is the statutory entity category that determines CIT
// exemption and development levy liability.
type Classification string

const (
	ClassificationSmall    Classification = "SMALL"
	ClassificationStandard Classification = "STANDARD"
)

// Failure reasons recorded when an entity does not qualify as SMALL.
// Diagnostic only; the reasoning trail carries the user-facing text.
const (
	FailReasonTurnover             = "turnover"
	FailReasonAssets               = "assets"
	FailReasonBothThresholds       = "both_thresholds"
	FailReasonProfessionalServices = "professional_services"
)

// Input holds the financial attributes of a business for one
// classification request.
type Input struct {
	Turnover               decimal.Decimal `json:"turnover"`
	FixedAssets            decimal.Decimal `json:"fixed_assets"`
	IsProfessionalServices bool            `json:"is_professional_services"`
	IndustryCode           string          `json:"industry_code,omitempty"`
}

// ThresholdSnapshot records the threshold values in force at evaluation
// time and the outcome of each test, so a stored result stays auditable
// even if the statutory thresholds later change.
type ThresholdSnapshot struct {
	TurnoverThreshold decimal.Decimal `json:"turnover_threshold"`
	AssetsThreshold   decimal.Decimal `json:"assets_threshold"`
	TurnoverMet       bool            `json:"turnover_met"`
	AssetsMet         bool            `json:"assets_met"`
}

// TaxImplications holds the rates that follow from a classification.
// Rates are fractions (0.275 = 27.5%).
type TaxImplications struct {
	CITRate       decimal.Decimal `json:"cit_rate"`
	DevLevyRate   decimal.Decimal `json:"dev_levy_rate"`
	VATApplicable bool            `json:"vat_applicable"`
}

// Result is the complete, self-contained outcome of one classification
// call. It is never mutated after creation; corrections are new results.
type Result struct {
	Classification    Classification    `json:"classification"`
	CITExempt         bool              `json:"cit_exempt"`
	DevLevyApplicable bool              `json:"dev_levy_applicable"`
	Reasoning         []string          `json:"reasoning"`
	Thresholds        ThresholdSnapshot `json:"thresholds"`
	TaxImplications   TaxImplications   `json:"tax_implications"`

	// FailureReason tags why SMALL was not reached (empty for SMALL).
	FailureReason string `json:"failure_reason,omitempty"`
}

// InvalidInputError reports an invariant violation on input handed
// directly to the classifier or calculator, such as a negative amount.
// Recoverable problems should go through the validators instead.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// FieldError is a single caller-correctable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects every violation found in one pass.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}
