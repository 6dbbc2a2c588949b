package vat

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateInvoice computes per-line and aggregate VAT for an invoice.
//
// For each line, lineTotal = quantity × unitPrice and lineVAT = lineTotal ×
// effective rate, where the effective rate is zero for lines recognised as
// basic items under the given mode and the standard rate for invoiceDate
// otherwise. subtotal, vatAmount, and totalAmount are exact sums; no
// rounding is applied here; callers round at presentation and storage
// boundaries only.
//
// Negative quantities or unit prices abort with an InvalidInputError;
// there is no partial result.
func CalculateInvoice(invoiceNumber string, invoiceDate time.Time, customerName string, items []LineItem, mode ZeroRatingMode) (InvoiceCalculation, error) {
	standardRate := RateForDate(invoiceDate)

	subtotal := decimal.Zero
	vatAmount := decimal.Zero
	lines := make([]LineBreakdown, 0, len(items))

	for _, item := range items {
		if item.Quantity.IsNegative() {
			return InvoiceCalculation{}, &InvalidInputError{Field: "quantity", Message: "must not be negative"}
		}
		if item.UnitPrice.IsNegative() {
			return InvoiceCalculation{}, &InvalidInputError{Field: "unit_price", Message: "must not be negative"}
		}

		lineTotal := item.Quantity.Mul(item.UnitPrice)

		zeroRated := zeroRate(item, mode)
		rate := standardRate
		if zeroRated {
			rate = decimal.Zero
		}

		lineVAT := lineTotal.Mul(rate)

		lines = append(lines, LineBreakdown{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
			VATRate:     rate,
			VAT:         lineVAT,
			Total:       lineTotal.Add(lineVAT),
			ZeroRated:   zeroRated,
		})

		subtotal = subtotal.Add(lineTotal)
		vatAmount = vatAmount.Add(lineVAT)
	}

	return InvoiceCalculation{
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   invoiceDate,
		CustomerName:  customerName,
		Subtotal:      subtotal,
		VATRate:       standardRate,
		VATAmount:     vatAmount,
		TotalAmount:   subtotal.Add(vatAmount),
		Lines:         lines,
	}, nil
}

// zeroRate decides whether a line is zero-rated under the given mode.
// An explicit flag always wins; inference only fills in an absent flag.
func zeroRate(item LineItem, mode ZeroRatingMode) bool {
	if item.IsBasicItem != nil {
		return *item.IsBasicItem
	}
	if mode == ZeroRateInferred {
		return IsBasicItem(item.Description)
	}
	return false
}
