package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taxpadi/api/internal/classify"
	"github.com/taxpadi/api/internal/services/classification"
	"github.com/taxpadi/api/internal/services/organization"
)

// ClassificationHandler exposes entity classification, both persisted per
// organization and as a stateless preview.
type ClassificationHandler struct {
	classificationSvc *classification.Service
	orgSvc            *organization.Service
	logger            *slog.Logger
}

// NewClassificationHandler creates a new classification handler.
func NewClassificationHandler(
	classificationSvc *classification.Service,
	orgSvc *organization.Service,
	logger *slog.Logger,
) *ClassificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassificationHandler{
		classificationSvc: classificationSvc,
		orgSvc:            orgSvc,
		logger:            logger,
	}
}

// RegisterRoutes registers the classification routes on the given mux.
func (h *ClassificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/organizations/{id}/classifications", h.Create)
	mux.HandleFunc("GET /api/v1/organizations/{id}/classifications", h.ListByOrganization)
	mux.HandleFunc("POST /api/v1/classifications/preview", h.Preview)
}

// classificationRequest carries the financials to classify. AsOf selects
// the rate year; empty means today.
type classificationRequest struct {
	classify.PartialInput
	AsOf string `json:"as_of"`
}

// decodeAndClassify runs the shared validate-then-classify pipeline.
// When ok is false a response has already been written.
func (h *ClassificationHandler) decodeAndClassify(w http.ResponseWriter, r *http.Request) (classify.Input, classify.Result, time.Time, bool) {
	var req classificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return classify.Input{}, classify.Result{}, time.Time{}, false
	}

	if v := classify.ValidateInput(req.PartialInput); !v.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, validationJSON{
			Error:  "validation failed",
			Fields: v.Errors,
		})
		return classify.Input{}, classify.Result{}, time.Time{}, false
	}

	asOf := time.Now()
	if req.AsOf != "" {
		parsed, err := parseDate(req.AsOf)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "as_of must be an ISO date (YYYY-MM-DD)"})
			return classify.Input{}, classify.Result{}, time.Time{}, false
		}
		asOf = parsed
	}

	input := req.PartialInput.Input()
	result, err := classify.Classify(input, asOf)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return classify.Input{}, classify.Result{}, time.Time{}, false
	}

	return input, result, asOf, true
}

// Create handles POST /api/v1/organizations/{id}/classifications
// It classifies the submitted financials and stores the result against
// the organization as a new, immutable record.
func (h *ClassificationHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	input, result, asOf, ok := h.decodeAndClassify(w, r)
	if !ok {
		return
	}

	record, err := h.classificationSvc.Create(r.Context(), orgID, input, result, asOf)
	if err != nil {
		h.logger.Error("failed to store classification", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Preview handles POST /api/v1/classifications/preview
// Same pipeline as Create but nothing is persisted.
func (h *ClassificationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	_, result, _, ok := h.decodeAndClassify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListByOrganization handles GET /api/v1/organizations/{id}/classifications
func (h *ClassificationHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid organization ID"})
		return
	}

	records, err := h.classificationSvc.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to list classifications", "error", err, "organization_id", orgID)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	if records == nil {
		records = []classification.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
