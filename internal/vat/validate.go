package vat

import (
	"time"

	"github.com/shopspring/decimal"
)

// crossCheckTolerance is the rounding slack allowed between the stated VAT
// amount and grossAmount × vatRate: one hundredth of a naira.
var crossCheckTolerance = decimal.NewFromFloat(0.01)

// PartialInvoice is an unvalidated invoice as received from a caller.
// Pointer fields distinguish absent values from zero values; the date is
// kept as its ISO string so parse failures surface as field errors.
type PartialInvoice struct {
	InvoiceNumber string           `json:"invoice_number"`
	InvoiceDate   string           `json:"invoice_date"`
	CustomerName  string           `json:"customer_name"`
	GrossAmount   *decimal.Decimal `json:"gross_amount"`
	VATRate       *decimal.Decimal `json:"vat_rate"`
	VATAmount     *decimal.Decimal `json:"vat_amount"`
	InvoiceType   string           `json:"invoice_type"`
}

// ValidateInvoice checks a partial invoice and reports every violation
// found; it never stops at the first.
//
// When both grossAmount and vatRate are present, the stated vatAmount is
// cross-checked against grossAmount × vatRate within a one-kobo tolerance.
// A mismatch is a validation error, not a computation failure.
func ValidateInvoice(partial PartialInvoice) ValidationResult {
	var errs []FieldError

	if partial.InvoiceNumber == "" {
		errs = append(errs, FieldError{Field: "invoice_number", Message: "invoice number is required"})
	}

	if partial.InvoiceDate == "" {
		errs = append(errs, FieldError{Field: "invoice_date", Message: "invoice date is required"})
	} else if _, err := time.Parse("2006-01-02", partial.InvoiceDate); err != nil {
		errs = append(errs, FieldError{Field: "invoice_date", Message: "invoice date must be an ISO date (YYYY-MM-DD)"})
	}

	if partial.CustomerName == "" {
		errs = append(errs, FieldError{Field: "customer_name", Message: "customer name is required"})
	}

	switch {
	case partial.GrossAmount == nil:
		errs = append(errs, FieldError{Field: "gross_amount", Message: "gross amount is required"})
	case partial.GrossAmount.IsNegative():
		errs = append(errs, FieldError{Field: "gross_amount", Message: "gross amount must not be negative"})
	}

	switch InvoiceType(partial.InvoiceType) {
	case InvoiceTypeOutput, InvoiceTypeInput:
	default:
		errs = append(errs, FieldError{Field: "invoice_type", Message: "invoice type must be OUTPUT or INPUT"})
	}

	if partial.GrossAmount != nil && partial.VATRate != nil && partial.VATAmount != nil {
		expected := partial.GrossAmount.Mul(*partial.VATRate)
		diff := partial.VATAmount.Sub(expected).Abs()
		if diff.GreaterThan(crossCheckTolerance) {
			errs = append(errs, FieldError{
				Field:   "vat_amount",
				Message: "VAT amount does not match gross amount × VAT rate",
			})
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
