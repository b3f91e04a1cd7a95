package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/services"
)

// SettingsHandler handles settings endpoints.
type SettingsHandler struct {
	settings *services.SettingsService
	logger   zerolog.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings *services.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger.With().Str("handler", "settings").Logger(),
	}
}

// Public handles GET /settings/public
func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	public, err := h.settings.Public(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": public})
}

// Get handles GET /settings/{key}
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// setRequest is the body of PUT /settings/{key}.
type setRequest struct {
	Value  string `json:"value"`
	Type   string `json:"type"`
	Public bool   `json:"public"`
}

// Set handles PUT /settings/{key}
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var body setRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperror.BadRequest("invalid JSON payload", nil))
		return
	}
	if body.Type == "" {
		body.Type = "string"
	}

	setting, err := h.settings.Set(r.Context(), chi.URLParam(r, "key"), body.Value, body.Type, body.Public)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
