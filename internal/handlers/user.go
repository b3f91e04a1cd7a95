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

// UserHandler handles user account endpoints.
type UserHandler struct {
	users  *services.UserService
	pages  PageLimits
	logger zerolog.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(users *services.UserService, pages PageLimits, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		pages:  pages,
		logger: logger.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, opts := pageParams(r, h.pages)

	filters := repository.UserFilters{
		Role:               r.URL.Query().Get("role"),
		Search:             r.URL.Query().Get("search"),
		IncludeDeactivated: r.URL.Query().Get("include_deactivated") == "true",
	}
	if raw := r.URL.Query().Get("email_verified"); raw != "" {
		verified := raw == "true"
		filters.EmailVerified = &verified
	}

	users, total, err := h.users.List(r.Context(), filters, opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, paginated(users, page, opts.Limit, total))
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Get(r.Context(), id, r.URL.Query().Get("include_inactive") == "true")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	user, err := h.users.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PATCH /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req services.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}

	user, err := h.users.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id} (soft delete)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.users.Delete(r.Context(), id, auditFrom(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Reactivate handles POST /users/{id}/reactivate
func (h *UserHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var body reactivateRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	user, err := h.users.Reactivate(r.Context(), id, body.ReactivatedBy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
