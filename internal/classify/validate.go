package classify

import "github.com/shopspring/decimal"

// PartialInput is an unvalidated classification request. Pointer fields
// distinguish absent values from zero values.
type PartialInput struct {
	Turnover               *decimal.Decimal `json:"turnover"`
	FixedAssets            *decimal.Decimal `json:"fixed_assets"`
	IsProfessionalServices *bool            `json:"is_professional_services"`
	IndustryCode           string           `json:"industry_code,omitempty"`
}

// ValidateInput checks a partial input for presence and non-negativity.
// Every violation found is reported; it never stops at the first.
func ValidateInput(partial PartialInput) ValidationResult {
	var errs []FieldError

	switch {
	case partial.Turnover == nil:
		errs = append(errs, FieldError{Field: "turnover", Message: "turnover is required"})
	case partial.Turnover.IsNegative():
		errs = append(errs, FieldError{Field: "turnover", Message: "turnover must not be negative"})
	}

	switch {
	case partial.FixedAssets == nil:
		errs = append(errs, FieldError{Field: "fixed_assets", Message: "fixed assets is required"})
	case partial.FixedAssets.IsNegative():
		errs = append(errs, FieldError{Field: "fixed_assets", Message: "fixed assets must not be negative"})
	}

	if partial.IsProfessionalServices == nil {
		errs = append(errs, FieldError{Field: "is_professional_services", Message: "professional services flag is required"})
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Input converts a validated PartialInput into an Input. Callers are
// expected to have run ValidateInput first; absent fields become zero values.
func (p PartialInput) Input() Input {
	in := Input{IndustryCode: p.IndustryCode}
	if p.Turnover != nil {
		in.Turnover = *p.Turnover
	}
	if p.FixedAssets != nil {
		in.FixedAssets = *p.FixedAssets
	}
	if p.IsProfessionalServices != nil {
		in.IsProfessionalServices = *p.IsProfessionalServices
	}
	return in
}
