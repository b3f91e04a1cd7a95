package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
)

// Renditions an upload is expected to provide, smallest first.
var imageSizes = []string{"thumb", "small", "medium", "large"}

// AttachImagesRequest registers the stored renditions of one uploaded photo.
// URLs point into the object store; this service never touches image bytes.
type AttachImagesRequest struct {
	ProductID  int64             `json:"product_id" validate:"required,gt=0"`
	URLs       map[string]string `json:"urls" validate:"required"`
	ImageIndex int64             `json:"image_index" validate:"gte=0"`
	IsPrimary  bool              `json:"is_primary"`
}

// ImageService handles product image registration.
type ImageService struct {
	repos    *repository.Repositories
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewImageService creates an image service.
func NewImageService(deps Deps, validate *validator.Validate, logger zerolog.Logger) *ImageService {
	return &ImageService{
		repos:    deps.Repos,
		validate: validate,
		logger:   logger.With().Str("service", "image").Logger(),
	}
}

// Attach records all size variants of one uploaded product photo under a
// shared file hash.
func (s *ImageService) Attach(ctx context.Context, req *AttachImagesRequest) ([]*repository.ProductImage, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	for _, size := range imageSizes {
		if _, ok := req.URLs[size]; !ok {
			return nil, apperror.Validation("missing image rendition: "+size, "urls")
		}
	}

	product, err := s.repos.Product.GetByID(ctx, req.ProductID, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NotFound("product", req.ProductID)
	}

	fileHash := uuid.NewString()
	for _, size := range imageSizes {
		_, err := s.repos.Image.Create(ctx, repository.Record{
			"product_id":  req.ProductID,
			"url":         req.URLs[size],
			"size":        size,
			"file_hash":   fileHash,
			"is_primary":  req.IsPrimary,
			"image_index": req.ImageIndex,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.IsPrimary {
		if err := s.repos.Image.SetPrimary(ctx, req.ProductID, req.ImageIndex); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int64("product_id", req.ProductID).Str("file_hash", fileHash).Msg("images attached")
	return s.repos.Image.ListByProduct(ctx, req.ProductID, "")
}

// ListByProduct returns the images of a product, optionally one size only.
func (s *ImageService) ListByProduct(ctx context.Context, productID int64, size string) ([]*repository.ProductImage, error) {
	return s.repos.Image.ListByProduct(ctx, productID, size)
}

// SetPrimary changes which image index is the product's primary photo.
func (s *ImageService) SetPrimary(ctx context.Context, productID, imageIndex int64) error {
	return s.repos.Image.SetPrimary(ctx, productID, imageIndex)
}

// Delete soft-deletes one image record.
func (s *ImageService) Delete(ctx context.Context, id int64, audit repository.AuditInfo) error {
	_, err := s.repos.Image.Delete(ctx, id, audit)
	return err
}
