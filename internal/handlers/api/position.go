package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpadi/api/internal/services/invoice"
	"github.com/taxpadi/api/internal/services/organization"
	"github.com/taxpadi/api/internal/vat"
)

// PositionHandler exposes net VAT position reports, both from stored
// invoices and from caller-supplied period data.
type PositionHandler struct {
	invoiceSvc *invoice.Service
	orgSvc     *organization.Service
	logger     *slog.Logger
}

// NewPositionHandler creates a new VAT position handler.
func NewPositionHandler(invoiceSvc *invoice.Service, orgSvc *organization.Service, logger *slog.Logger) *PositionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionHandler{invoiceSvc: invoiceSvc, orgSvc: orgSvc, logger: logger}
}

// RegisterRoutes registers the VAT position routes on the given mux.
func (h *PositionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/organizations/{id}/vat/position", h.Position)
	mux.HandleFunc("POST /api/v1/vat/positions/cumulative", h.Cumulative)
}

// Position handles GET /api/v1/organizations/{id}/vat/position?from=&to=
// It aggregates the organization's stored invoices for the period into a
// net position.
func (h *PositionHandler) Position(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid organization ID"})
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "from must be an ISO date (YYYY-MM-DD)"})
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "to must be an ISO date (YYYY-MM-DD)"})
		return
	}
	if to.Before(from) {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "to must not be before from"})
		return
	}

	if _, err := h.orgSvc.Get(r.Context(), orgID); err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorJSON{Error: "organization not found"})
			return
		}
		h.logger.Error("failed to load organization", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	invoices, err := h.invoiceSvc.ListByPeriod(r.Context(), orgID, from, to)
	if err != nil {
		h.logger.Error("failed to load invoices for period", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, vat.ComputePosition(invoices, from, to))
}

// cumulativeRequest is an ordered list of filing periods with their
// invoices, oldest first.
type cumulativeRequest struct {
	Periods []periodRequest `json:"periods"`
}

type periodRequest struct {
	Start    string                     `json:"start"`
	End      string                     `json:"end"`
	Invoices []cumulativeInvoiceRequest `json:"invoices"`
}

// cumulativeInvoiceRequest is the minimal invoice shape a position needs.
type cumulativeInvoiceRequest struct {
	InvoiceDate string          `json:"invoice_date"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	InvoiceType string          `json:"invoice_type"`
}

// Cumulative handles POST /api/v1/vat/positions/cumulative
// Periods are processed in the order given, with excess input credit
// carried forward and applied against later payable amounts.
func (h *PositionHandler) Cumulative(w http.ResponseWriter, r *http.Request) {
	var req cumulativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	if len(req.Periods) == 0 {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "at least one period is required"})
		return
	}

	periods := make([]vat.Period, 0, len(req.Periods))
	for i, p := range req.Periods {
		start, err := parseDate(p.Start)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "period start must be an ISO date (YYYY-MM-DD)"})
			return
		}
		end, err := parseDate(p.End)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "period end must be an ISO date (YYYY-MM-DD)"})
			return
		}
		if end.Before(start) {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "period end must not be before period start"})
			return
		}
		if i > 0 && !start.After(periods[i-1].End) {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "periods must be ordered and non-overlapping"})
			return
		}

		invoices := make([]vat.Invoice, 0, len(p.Invoices))
		for _, inv := range p.Invoices {
			date, err := parseDate(inv.InvoiceDate)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invoice date must be an ISO date (YYYY-MM-DD)"})
				return
			}
			invoiceType := vat.InvoiceType(inv.InvoiceType)
			if invoiceType != vat.InvoiceTypeOutput && invoiceType != vat.InvoiceTypeInput {
				writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invoice type must be OUTPUT or INPUT"})
				return
			}
			invoices = append(invoices, vat.Invoice{
				InvoiceDate: date,
				VATAmount:   inv.VATAmount,
				InvoiceType: invoiceType,
			})
		}

		periods = append(periods, vat.Period{Invoices: invoices, Start: start, End: end})
	}

	writeJSON(w, http.StatusOK, vat.ComputeCumulativePositions(periods))
}
