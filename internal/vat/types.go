package vat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes sales invoices (VAT collected) from purchase
// invoices (VAT paid, creditable).
type InvoiceType string

const (
	InvoiceTypeOutput InvoiceType = "OUTPUT"
	InvoiceTypeInput  InvoiceType = "INPUT"
)

// ZeroRatingMode selects how a line item is recognised as a zero-rated
// basic item during invoice calculation.
//
// The two modes exist because an explicit per-line flag and keyword
// inference from the description are different policies; the caller picks
// one rather than the engine deciding silently.
type ZeroRatingMode string

const (
	// ZeroRateExplicit honors only a per-line IsBasicItem flag set to true.
	// Absent or false flags charge the standard rate for the invoice date.
	ZeroRateExplicit ZeroRatingMode = "explicit"

	// ZeroRateInferred additionally runs keyword inference on the
	// description when the per-line flag is absent. An explicit false
	// still overrides inference.
	ZeroRateInferred ZeroRatingMode = "inferred"
)

// LineItem is one line of an invoice before calculation. IsBasicItem is an
// explicit override; nil means unset.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsBasicItem *bool           `json:"is_basic_item,omitempty"`
}

// LineBreakdown is the calculated form of a single line.
type LineBreakdown struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	VAT         decimal.Decimal `json:"vat"`
	Total       decimal.Decimal `json:"total"`
	ZeroRated   bool            `json:"zero_rated"`
}

// InvoiceCalculation is the complete output of one invoice calculation.
// VATRate reports the standard rate in force on the invoice date;
// individual zero-rated lines contribute no VAT regardless.
type InvoiceCalculation struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	CustomerName  string          `json:"customer_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Lines         []LineBreakdown `json:"lines"`
}

// Invoice is the persisted, immutable audit form of a VAT invoice.
// Corrections are new invoices, never edits.
type Invoice struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	CustomerName   string          `json:"customer_name"`
	CustomerTIN    *string         `json:"customer_tin,omitempty"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	InvoiceType    InvoiceType     `json:"invoice_type"`
	Lines          []LineBreakdown `json:"lines,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// InvoiceCounts breaks the number of invoices in a position down by type.
type InvoiceCounts struct {
	Output int `json:"output"`
	Input  int `json:"input"`
	Total  int `json:"total"`
}

// Position is the net VAT position for one filing period. At most one of
// NetVATPayable and ExcessCredit is non-zero.
type Position struct {
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	OutputVAT     decimal.Decimal `json:"output_vat"`
	InputVAT      decimal.Decimal `json:"input_vat"`
	NetVATPayable decimal.Decimal `json:"net_vat_payable"`
	ExcessCredit  decimal.Decimal `json:"excess_credit"`
	InvoiceCounts InvoiceCounts   `json:"invoice_counts"`
	Summary       []string        `json:"summary"`
}

// Period pairs an invoice set with its filing period boundaries for
// cumulative position computation.
type Period struct {
	Invoices []Invoice `json:"invoices"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// InvalidInputError reports an invariant violation on data handed directly
// to the calculator, such as a negative quantity or unit price.
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
