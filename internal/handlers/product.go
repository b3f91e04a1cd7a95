package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	products *services.ProductService
	images   *services.ImageService
	pages    PageLimits
	logger   zerolog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(products *services.ProductService, images *services.ImageService, pages PageLimits, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		images:   images,
		pages:    pages,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, opts := pageParams(r, h.pages)

	filters := repository.ProductFilters{
		Search:             r.URL.Query().Get("search"),
		IncludeDeactivated: r.URL.Query().Get("include_deactivated") == "true",
	}
	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured := raw == "true"
		filters.Featured = &featured
	}

	products, total, err := h.products.List(r.Context(), filters, opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, paginated(products, page, opts.Limit, total))
}

// Carousel handles GET /products/carousel
func (h *ProductHandler) Carousel(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Carousel(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": products})
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	product, err := h.products.Get(r.Context(), id, r.URL.Query().Get("include_inactive") == "true")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Images handles GET /products/{id}/images
func (h *ProductHandler) Images(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	images, err := h.images.ListByProduct(r.Context(), id, r.URL.Query().Get("size"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": images})
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	product, err := h.products.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PATCH /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req services.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	product, err := h.products.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id} (soft delete)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.products.Delete(r.Context(), id, auditFrom(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Reactivate handles POST /products/{id}/reactivate
func (h *ProductHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var body reactivateRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	product, err := h.products.Reactivate(r.Context(), id, body.ReactivatedBy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}
