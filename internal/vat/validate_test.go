package vat

import (
	"testing"

	"github.com/shopspring/decimal"
)

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func validPartial() PartialInvoice {
	return PartialInvoice{
		InvoiceNumber: "INV-100",
		InvoiceDate:   "2025-06-01",
		CustomerName:  "Ada Ventures Ltd",
		GrossAmount:   decPtr(500_000),
		VATRate:       decPtr(0.10),
		VATAmount:     decPtr(50_000),
		InvoiceType:   "OUTPUT",
	}
}

func TestValidateInvoice_Valid(t *testing.T) {
	result := ValidateInvoice(validPartial())
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}
}

func TestValidateInvoice_CollectsAllErrors(t *testing.T) {
	result := ValidateInvoice(PartialInvoice{InvoiceType: "REFUND"})

	if result.Valid {
		t.Error("expected invalid result")
	}
	// invoice_number, invoice_date, customer_name, gross_amount, invoice_type
	if len(result.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestValidateInvoice_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PartialInvoice)
		wantErr string
	}{
		{"unparseable date", func(p *PartialInvoice) { p.InvoiceDate = "01/06/2025" }, "invoice_date"},
		{"negative gross", func(p *PartialInvoice) { p.GrossAmount = decPtr(-100) }, "gross_amount"},
		{"missing gross", func(p *PartialInvoice) { p.GrossAmount = nil }, "gross_amount"},
		{"bad type", func(p *PartialInvoice) { p.InvoiceType = "CREDIT" }, "invoice_type"},
		{"empty type", func(p *PartialInvoice) { p.InvoiceType = "" }, "invoice_type"},
		{"missing customer", func(p *PartialInvoice) { p.CustomerName = "" }, "customer_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partial := validPartial()
			tt.mutate(&partial)
			result := ValidateInvoice(partial)

			if result.Valid {
				t.Fatal("expected invalid result")
			}
			found := false
			for _, e := range result.Errors {
				if e.Field == tt.wantErr {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateInvoice_CrossCheck(t *testing.T) {
	tests := []struct {
		name      string
		vatAmount float64
		wantValid bool
	}{
		{"exact match", 50_000, true},
		{"within one kobo", 50_000.01, true},
		{"under by one kobo", 49_999.99, true},
		{"off by two kobo", 50_000.02, false},
		{"wildly off", 60_000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partial := validPartial()
			partial.VATAmount = decPtr(tt.vatAmount)
			result := ValidateInvoice(partial)

			if result.Valid != tt.wantValid {
				t.Errorf("valid: want %v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
		})
	}
}

func TestValidateInvoice_CrossCheckSkippedWhenRateAbsent(t *testing.T) {
	partial := validPartial()
	partial.VATRate = nil
	partial.VATAmount = decPtr(123) // Would fail the cross-check if it ran.

	result := ValidateInvoice(partial)
	if !result.Valid {
		t.Errorf("expected cross-check skipped without a rate, got errors: %v", result.Errors)
	}
}
