package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
)

// CreateOccasionRequest is the payload to create an occasion.
type CreateOccasionRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Description  string `json:"description" validate:"max=500"`
	DisplayOrder int64  `json:"display_order" validate:"gte=0"`
}

// OccasionService handles occasion management.
type OccasionService struct {
	repos    *repository.Repositories
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOccasionService creates an occasion service.
func NewOccasionService(deps Deps, validate *validator.Validate, logger zerolog.Logger) *OccasionService {
	return &OccasionService{
		repos:    deps.Repos,
		validate: validate,
		logger:   logger.With().Str("service", "occasion").Logger(),
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from an occasion name.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Create validates and inserts an occasion with a derived slug. A taken
// slug is a conflict.
func (s *OccasionService) Create(ctx context.Context, req *CreateOccasionRequest) (*repository.Occasion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	slug := Slugify(req.Name)
	taken, err := s.repos.Occasion.Exists(ctx, map[string]interface{}{"slug": slug})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("occasion slug already in use",
			map[string]interface{}{"slug": slug})
	}

	record, err := s.repos.Occasion.Create(ctx, repository.Record{
		"name":          req.Name,
		"slug":          slug,
		"description":   req.Description,
		"display_order": req.DisplayOrder,
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Occasion.GetByID(ctx, recordID(record), false)
}

// Get returns an occasion by slug, or a not-found error.
func (s *OccasionService) GetBySlug(ctx context.Context, slug string) (*repository.Occasion, error) {
	occasion, err := s.repos.Occasion.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if occasion == nil {
		return nil, apperror.NotFound("occasion", slug)
	}
	return occasion, nil
}

// List returns occasions in display order.
func (s *OccasionService) List(ctx context.Context, includeDeactivated bool) ([]*repository.Occasion, error) {
	return s.repos.Occasion.List(ctx, includeDeactivated)
}

// Delete soft-deletes an occasion.
func (s *OccasionService) Delete(ctx context.Context, id int64, audit repository.AuditInfo) error {
	_, err := s.repos.Occasion.Delete(ctx, id, audit)
	return err
}

// Reactivate restores a soft-deleted occasion.
func (s *OccasionService) Reactivate(ctx context.Context, id int64, reactivatedBy *int64) (*repository.Occasion, error) {
	if _, err := s.repos.Occasion.Reactivate(ctx, id, reactivatedBy); err != nil {
		return nil, err
	}
	return s.repos.Occasion.GetByID(ctx, id, false)
}
