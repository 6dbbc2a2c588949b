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

// InvoiceHandler exposes VAT invoice capture, calculation previews and
// lookups.
type InvoiceHandler struct {
	invoiceSvc *invoice.Service
	orgSvc     *organization.Service
	logger     *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoiceSvc *invoice.Service, orgSvc *organization.Service, logger *slog.Logger) *InvoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceHandler{invoiceSvc: invoiceSvc, orgSvc: orgSvc, logger: logger}
}

// RegisterRoutes registers the invoice routes on the given mux.
func (h *InvoiceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/organizations/{id}/invoices", h.Create)
	mux.HandleFunc("GET /api/v1/organizations/{id}/invoices", h.ListByOrganization)
	mux.HandleFunc("GET /api/v1/invoices/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/invoices/preview", h.Preview)
}

// invoiceRequest accepts either line items (amounts are calculated) or
// pre-stated amounts (amounts are cross-checked). Items win when both are
// present.
type invoiceRequest struct {
	InvoiceNumber  string         `json:"invoice_number"`
	InvoiceDate    string         `json:"invoice_date"`
	CustomerName   string         `json:"customer_name"`
	CustomerTIN    *string        `json:"customer_tin"`
	InvoiceType    string         `json:"invoice_type"`
	ZeroRatingMode string         `json:"zero_rating_mode"`
	Items          []vat.LineItem `json:"items"`

	GrossAmount *decimal.Decimal `json:"gross_amount"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	VATAmount   *decimal.Decimal `json:"vat_amount"`
}

// mode resolves the requested zero-rating mode, defaulting to keyword
// inference.
func (req invoiceRequest) mode() (vat.ZeroRatingMode, error) {
	switch vat.ZeroRatingMode(req.ZeroRatingMode) {
	case "":
		return vat.ZeroRateInferred, nil
	case vat.ZeroRateExplicit:
		return vat.ZeroRateExplicit, nil
	case vat.ZeroRateInferred:
		return vat.ZeroRateInferred, nil
	default:
		return "", errors.New("zero_rating_mode must be \"explicit\" or \"inferred\"")
	}
}

// buildInvoice turns a decoded request into a persistable invoice,
// calculating from line items when present and otherwise trusting the
// stated amounts after validation. When ok is false a response has
// already been written.
func (h *InvoiceHandler) buildInvoice(w http.ResponseWriter, req invoiceRequest) (vat.Invoice, bool) {
	mode, err := req.mode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return vat.Invoice{}, false
	}

	invoiceType := vat.InvoiceType(req.InvoiceType)
	partial := vat.PartialInvoice{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		CustomerName:  req.CustomerName,
		GrossAmount:   req.GrossAmount,
		VATRate:       req.VATRate,
		VATAmount:     req.VATAmount,
		InvoiceType:   req.InvoiceType,
	}

	if len(req.Items) > 0 {
		// The calculator produces the amounts; only the header fields
		// need validating here.
		var errs []vat.FieldError
		if req.InvoiceNumber == "" {
			errs = append(errs, vat.FieldError{Field: "invoice_number", Message: "invoice number is required"})
		}
		if req.CustomerName == "" {
			errs = append(errs, vat.FieldError{Field: "customer_name", Message: "customer name is required"})
		}
		if invoiceType != vat.InvoiceTypeOutput && invoiceType != vat.InvoiceTypeInput {
			errs = append(errs, vat.FieldError{Field: "invoice_type", Message: "invoice type must be OUTPUT or INPUT"})
		}
		invoiceDate, err := parseDate(req.InvoiceDate)
		if err != nil {
			errs = append(errs, vat.FieldError{Field: "invoice_date", Message: "invoice date must be an ISO date (YYYY-MM-DD)"})
		}
		if len(errs) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, validationJSON{Error: "validation failed", Fields: errs})
			return vat.Invoice{}, false
		}

		calc, err := vat.CalculateInvoice(req.InvoiceNumber, invoiceDate, req.CustomerName, req.Items, mode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
			return vat.Invoice{}, false
		}

		return vat.Invoice{
			InvoiceNumber: calc.InvoiceNumber,
			InvoiceDate:   calc.InvoiceDate,
			CustomerName:  calc.CustomerName,
			CustomerTIN:   req.CustomerTIN,
			GrossAmount:   calc.Subtotal,
			VATRate:       calc.VATRate,
			VATAmount:     calc.VATAmount,
			TotalAmount:   calc.TotalAmount,
			InvoiceType:   invoiceType,
			Lines:         calc.Lines,
		}, true
	}

	if v := vat.ValidateInvoice(partial); !v.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, validationJSON{Error: "validation failed", Fields: v.Errors})
		return vat.Invoice{}, false
	}

	invoiceDate, _ := parseDate(req.InvoiceDate)

	// Fill in what the caller left out: the statutory rate for the
	// invoice date, and the VAT amount it implies.
	rate := vat.RateForDate(invoiceDate)
	if req.VATRate != nil {
		rate = *req.VATRate
	}
	vatAmount := req.GrossAmount.Mul(rate)
	if req.VATAmount != nil {
		vatAmount = *req.VATAmount
	}

	return vat.Invoice{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		CustomerName:  req.CustomerName,
		CustomerTIN:   req.CustomerTIN,
		GrossAmount:   *req.GrossAmount,
		VATRate:       rate,
		VATAmount:     vatAmount,
		TotalAmount:   req.GrossAmount.Add(vatAmount),
		InvoiceType:   invoiceType,
	}, true
}

// Create handles POST /api/v1/organizations/{id}/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid organization ID"})
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

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	inv, ok := h.buildInvoice(w, req)
	if !ok {
		return
	}
	inv.OrganizationID = orgID

	stored, err := h.invoiceSvc.Create(r.Context(), inv)
	if err != nil {
		if errors.Is(err, invoice.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, errorJSON{Error: "invoice number already exists for organization"})
			return
		}
		h.logger.Error("failed to store invoice", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

// Preview handles POST /api/v1/invoices/preview
// Runs the full calculation for the given line items without persisting.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "items are required for a preview"})
		return
	}

	mode, err := req.mode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return
	}

	invoiceDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invoice date must be an ISO date (YYYY-MM-DD)"})
		return
	}

	calc, err := vat.CalculateInvoice(req.InvoiceNumber, invoiceDate, req.CustomerName, req.Items, mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, calc)
}

// Get handles GET /api/v1/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid invoice ID"})
		return
	}

	inv, err := h.invoiceSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorJSON{Error: "invoice not found"})
			return
		}
		h.logger.Error("failed to get invoice", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// ListByOrganization handles GET /api/v1/organizations/{id}/invoices
func (h *InvoiceHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid organization ID"})
		return
	}

	invoices, err := h.invoiceSvc.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to list invoices", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	if invoices == nil {
		invoices = []vat.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}
