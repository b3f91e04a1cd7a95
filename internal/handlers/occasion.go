package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/services"
)

// OccasionHandler handles occasion endpoints.
type OccasionHandler struct {
	occasions *services.OccasionService
	logger    zerolog.Logger
}

// NewOccasionHandler creates an occasion handler.
func NewOccasionHandler(occasions *services.OccasionService, logger zerolog.Logger) *OccasionHandler {
	return &OccasionHandler{
		occasions: occasions,
		logger:    logger.With().Str("handler", "occasion").Logger(),
	}
}

// List handles GET /occasions
func (h *OccasionHandler) List(w http.ResponseWriter, r *http.Request) {
	occasions, err := h.occasions.List(r.Context(), r.URL.Query().Get("include_deactivated") == "true")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": occasions})
}

// GetBySlug handles GET /occasions/{slug}
func (h *OccasionHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	occasion, err := h.occasions.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, occasion)
}

// Create handles POST /occasions
func (h *OccasionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOccasionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	occasion, err := h.occasions.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, occasion)
}

// Delete handles DELETE /occasions/{id} (soft delete)
func (h *OccasionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.occasions.Delete(r.Context(), id, auditFrom(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Reactivate handles POST /occasions/{id}/reactivate
func (h *OccasionHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var body reactivateRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	occasion, err := h.occasions.Reactivate(r.Context(), id, body.ReactivatedBy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, occasion)
}
