// Package services implements the storefront business operations between
// the HTTP handlers and the repositories. Request DTOs are validated here;
// repositories only ever see well-formed data.
package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Product  *ProductService
	User     *UserService
	Order    *OrderService
	Occasion *OccasionService
	Settings *SettingsService
	Image    *ImageService
}

// Deps are the shared collaborators injected into every service.
type Deps struct {
	Repos      *repository.Repositories
	Cache      *cache.Cache
	Events     *events.Publisher
	BCryptCost int
}

// New creates the service collection.
func New(deps Deps, logger zerolog.Logger) *Services {
	validate := validator.New()

	return &Services{
		Product:  NewProductService(deps, validate, logger),
		User:     NewUserService(deps, validate, logger),
		Order:    NewOrderService(deps, validate, logger),
		Occasion: NewOccasionService(deps, validate, logger),
		Settings: NewSettingsService(deps, logger),
		Image:    NewImageService(deps, validate, logger),
	}
}

// recordID extracts the primary key from a raw record, tolerating the
// integer widths the driver may hand back.
func recordID(r repository.Record) int64 {
	switch v := r["id"].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// validationError converts a validator result into a field-level
// application error.
func validationError(err error) error {
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return apperror.Validation("invalid value for "+fe.Field(), fe.Field())
	}
	return apperror.Validation(err.Error(), "")
}
