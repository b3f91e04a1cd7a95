// Package handlers contains the chi HTTP handlers of the storefront API.
// Handlers decode and dispatch; business decisions live in the services.
package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Product  *ProductHandler
	User     *UserHandler
	Order    *OrderHandler
	Occasion *OccasionHandler
	Settings *SettingsHandler
	Image    *ImageHandler
	Health   *HealthHandler
}

// PageLimits carries the configured pagination bounds for list endpoints.
type PageLimits struct {
	Default int
	Max     int
}

// New creates the handler collection.
func New(svcs *services.Services, health *HealthHandler, pages PageLimits, logger zerolog.Logger) *Handlers {
	return &Handlers{
		Product:  NewProductHandler(svcs.Product, svcs.Image, pages, logger),
		User:     NewUserHandler(svcs.User, pages, logger),
		Order:    NewOrderHandler(svcs.Order, pages, logger),
		Occasion: NewOccasionHandler(svcs.Occasion, logger),
		Settings: NewSettingsHandler(svcs.Settings, logger),
		Image:    NewImageHandler(svcs.Image, logger),
		Health:   health,
	}
}

// errorBody is the error envelope returned by the API.
type errorBody struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders a typed application error with its mapped HTTP status;
// anything untyped becomes an opaque 500.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		writeJSON(w, appErr.HTTPStatus(), errorBody{
			Error:   string(appErr.Kind),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Context,
		})
		return
	}

	logger.Error().Err(err).Msg("unhandled error reached handler")
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   "internal_error",
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	})
}

// paginated wraps list payloads with their pagination envelope.
func paginated(data interface{}, page, limit int, total int64) map[string]interface{} {
	pages := (total + int64(limit) - 1) / int64(limit)
	return map[string]interface{}{
		"data": data,
		"pagination": map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	}
}

// pageParams parses page/limit query parameters into list options, clamping
// the limit to the configured bounds.
func pageParams(r *http.Request, pages PageLimits) (page int, opts repository.ListOptions) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > pages.Max {
		limit = pages.Default
	}

	opts = repository.ListOptions{
		Limit:     limit,
		Offset:    (page - 1) * limit,
		OrderBy:   r.URL.Query().Get("order_by"),
		Ascending: r.URL.Query().Get("ascending") == "true",
	}
	return page, opts
}

func pathID(r *http.Request, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("invalid id in path", map[string]interface{}{"id": raw})
	}
	return id, nil
}

// deleteRequest is the optional body of soft-delete endpoints.
type deleteRequest struct {
	DeletedBy *int64 `json:"deleted_by"`
	Reason    string `json:"reason"`
}

// auditFrom builds the audit envelope from the delete request body and the
// caller's address.
func auditFrom(r *http.Request) repository.AuditInfo {
	var body deleteRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	audit := repository.AuditInfo{
		DeletedBy: body.DeletedBy,
		Reason:    body.Reason,
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		audit.IPAddress = &host
	}
	return audit
}

// reactivateRequest is the body of reactivation endpoints.
type reactivateRequest struct {
	ReactivatedBy *int64 `json:"reactivated_by"`
}
