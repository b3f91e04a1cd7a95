package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/services"
)

// ImageHandler handles product image endpoints.
type ImageHandler struct {
	images *services.ImageService
	logger zerolog.Logger
}

// NewImageHandler creates an image handler.
func NewImageHandler(images *services.ImageService, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger.With().Str("handler", "image").Logger(),
	}
}

// Attach handles POST /images
func (h *ImageHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req services.AttachImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	images, err := h.images.Attach(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": images})
}

// setPrimaryRequest is the body of POST /images/primary.
type setPrimaryRequest struct {
	ProductID  int64 `json:"product_id"`
	ImageIndex int64 `json:"image_index"`
}

// SetPrimary handles POST /images/primary
func (h *ImageHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	var body setPrimaryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}
	if body.ProductID <= 0 {
		writeError(w, h.logger, apperror.Validation("product_id is required", "product_id"))
		return
	}

	if err := h.images.SetPrimary(r.Context(), body.ProductID, body.ImageIndex); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Delete handles DELETE /images/{id} (soft delete)
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.images.Delete(r.Context(), id, auditFrom(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
