package vat

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxpadi/api/internal/money"
)

// ComputePosition aggregates the invoices falling inside the period
// (inclusive at both ends, compared as dates) into a net VAT position.
//
// outputVAT and inputVAT are straight sums of vatAmount by invoice type.
// netVATPayable and excessCredit are the two clamped directions of the
// same difference, so exactly one of them can be non-zero and the
// accounting identity netVATPayable + inputVAT == outputVAT + excessCredit
// always holds.
func ComputePosition(invoices []Invoice, periodStart, periodEnd time.Time) Position {
	outputVAT := decimal.Zero
	inputVAT := decimal.Zero
	var outputCount, inputCount int

	for _, inv := range invoices {
		if !inPeriod(inv.InvoiceDate, periodStart, periodEnd) {
			continue
		}
		switch inv.InvoiceType {
		case InvoiceTypeOutput:
			outputVAT = outputVAT.Add(inv.VATAmount)
			outputCount++
		case InvoiceTypeInput:
			inputVAT = inputVAT.Add(inv.VATAmount)
			inputCount++
		}
	}

	diff := outputVAT.Sub(inputVAT)
	netPayable := decimal.Max(decimal.Zero, diff)
	excessCredit := decimal.Max(decimal.Zero, diff.Neg())

	position := Position{
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		OutputVAT:     outputVAT,
		InputVAT:      inputVAT,
		NetVATPayable: netPayable,
		ExcessCredit:  excessCredit,
		InvoiceCounts: InvoiceCounts{
			Output: outputCount,
			Input:  inputCount,
			Total:  outputCount + inputCount,
		},
	}
	position.Summary = buildSummary(position)
	return position
}

// ComputeCumulativePositions processes periods strictly left to right,
// carrying excess input credit forward and applying it against later
// periods' net payable amounts.
//
// Each period is first computed standalone; available credit then reduces
// its net payable (up to the credit available), and the period's own
// unadjusted excess credit joins the running balance afterwards. Period N
// depends on every period before it, so this is a sequential fold.
func ComputeCumulativePositions(periods []Period) []Position {
	positions := make([]Position, 0, len(periods))
	carryForward := decimal.Zero

	for _, p := range periods {
		position := ComputePosition(p.Invoices, p.Start, p.End)

		if carryForward.GreaterThan(decimal.Zero) && position.NetVATPayable.GreaterThan(decimal.Zero) {
			creditUsed := decimal.Min(carryForward, position.NetVATPayable)
			carryForward = carryForward.Sub(creditUsed)
			position.NetVATPayable = position.NetVATPayable.Sub(creditUsed)
			position.Summary = append(position.Summary, fmt.Sprintf(
				"Carry-forward credit of %s applied; net VAT payable reduced to %s.",
				money.Format(creditUsed), money.Format(position.NetVATPayable)))
		}

		carryForward = carryForward.Add(position.ExcessCredit)
		positions = append(positions, position)
	}

	return positions
}

// FilingDeadline returns the statutory remittance deadline for a period:
// the 21st day of the month following the period end.
func FilingDeadline(periodEnd time.Time) time.Time {
	firstOfNext := time.Date(periodEnd.Year(), periodEnd.Month(), 1, 0, 0, 0, 0, periodEnd.Location()).AddDate(0, 1, 0)
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), 21, 0, 0, 0, 0, periodEnd.Location())
}

// inPeriod compares date-only values, inclusive at both boundaries.
func inPeriod(date, start, end time.Time) bool {
	d := toDate(date)
	return !d.Before(toDate(start)) && !d.After(toDate(end))
}

func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// buildSummary renders the deterministic, ordered display lines for a
// standalone position.
func buildSummary(p Position) []string {
	summary := []string{
		fmt.Sprintf("VAT position for %s to %s.",
			p.PeriodStart.Format("2 January 2006"), p.PeriodEnd.Format("2 January 2006")),
		fmt.Sprintf("Output VAT: %s from %d sales invoice(s).",
			money.Format(p.OutputVAT), p.InvoiceCounts.Output),
		fmt.Sprintf("Input VAT: %s from %d purchase invoice(s).",
			money.Format(p.InputVAT), p.InvoiceCounts.Input),
	}

	switch {
	case p.NetVATPayable.GreaterThan(decimal.Zero):
		summary = append(summary, fmt.Sprintf("Net VAT payable: %s, due by %s.",
			money.Format(p.NetVATPayable), FilingDeadline(p.PeriodEnd).Format("2 January 2006")))
	case p.ExcessCredit.GreaterThan(decimal.Zero):
		summary = append(summary, fmt.Sprintf("Excess input credit of %s carried forward to the next period.",
			money.Format(p.ExcessCredit)))
	default:
		summary = append(summary, "Output and input VAT are balanced; nothing is payable.")
	}

	return summary
}
