package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taxpadi/api/internal/services/organization"
)

// OrganizationHandler exposes organization registration and lookup.
type OrganizationHandler struct {
	orgSvc *organization.Service
	logger *slog.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(orgSvc *organization.Service, logger *slog.Logger) *OrganizationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationHandler{orgSvc: orgSvc, logger: logger}
}

// RegisterRoutes registers the organization routes on the given mux.
func (h *OrganizationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/organizations", h.Create)
	mux.HandleFunc("GET /api/v1/organizations", h.List)
	mux.HandleFunc("GET /api/v1/organizations/{id}", h.Get)
}

type createOrganizationRequest struct {
	Name string  `json:"name"`
	TIN  *string `json:"tin"`
}

// Create handles POST /api/v1/organizations
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "name is required"})
		return
	}

	org, err := h.orgSvc.Create(r.Context(), organization.CreateParams{
		Name: req.Name,
		TIN:  req.TIN,
	})
	if err != nil {
		h.logger.Error("failed to create organization", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

// Get handles GET /api/v1/organizations/{id}
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid organization ID"})
		return
	}

	org, err := h.orgSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorJSON{Error: "organization not found"})
			return
		}
		h.logger.Error("failed to get organization", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// List handles GET /api/v1/organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgSvc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list organizations", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	if orgs == nil {
		orgs = []organization.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}
