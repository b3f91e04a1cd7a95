package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orders *services.OrderService
	pages  PageLimits
	logger zerolog.Logger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *services.OrderService, pages PageLimits, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		pages:  pages,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, opts := pageParams(r, h.pages)

	filters := repository.OrderFilters{
		Status:             r.URL.Query().Get("status"),
		Search:             r.URL.Query().Get("search"),
		IncludeDeactivated: r.URL.Query().Get("include_deactivated") == "true",
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
			filters.UserID = &userID
		}
	}

	orders, total, err := h.orders.List(r.Context(), filters, opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, paginated(orders, page, opts.Limit, total))
}

// Get handles GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// History handles GET /orders/{id}/history
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	entries, err := h.orders.History(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	order, err := h.orders.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// statusRequest is the body of PATCH /orders/{id}/status.
type statusRequest struct {
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	ChangedBy *int64 `json:"changed_by"`
}

// UpdateStatus handles PATCH /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var body statusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, body.Status, body.Notes, body.ChangedBy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /orders/{id} (soft delete)
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orders.Delete(r.Context(), id, auditFrom(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
