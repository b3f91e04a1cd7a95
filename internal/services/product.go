package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/repository"
)

const carouselCacheKey = "products:carousel"

// CreateProductRequest is the payload to create a product.
type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=255"`
	Summary       string  `json:"summary" validate:"max=500"`
	Description   string  `json:"description"`
	SKU           string  `json:"sku" validate:"required,min=3,max=64"`
	PriceUSD      float64 `json:"price_usd" validate:"required,gt=0"`
	Stock         int64   `json:"stock" validate:"gte=0"`
	Featured      bool    `json:"featured"`
	CarouselOrder *int64  `json:"carousel_order"`
}

// UpdateProductRequest is the payload to update a product. Nil fields are
// left untouched.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Summary       *string  `json:"summary" validate:"omitempty,max=500"`
	Description   *string  `json:"description"`
	PriceUSD      *float64 `json:"price_usd" validate:"omitempty,gt=0"`
	Stock         *int64   `json:"stock" validate:"omitempty,gte=0"`
	Featured      *bool    `json:"featured"`
	CarouselOrder *int64   `json:"carousel_order"`
}

// ProductService handles catalog operations.
type ProductService struct {
	repos    *repository.Repositories
	cache    *cache.Cache
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProductService creates a product service.
func NewProductService(deps Deps, validate *validator.Validate, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repos:    deps.Repos,
		cache:    deps.Cache,
		validate: validate,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// Create validates and inserts a new product. A taken SKU is a conflict.
func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*repository.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	taken, err := s.repos.Product.Exists(ctx, map[string]interface{}{"sku": req.SKU})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("SKU already in use",
			map[string]interface{}{"sku": req.SKU})
	}

	data := repository.Record{
		"name":        req.Name,
		"summary":     req.Summary,
		"description": req.Description,
		"sku":         req.SKU,
		"price_usd":   req.PriceUSD,
		"stock":       req.Stock,
		"featured":    req.Featured,
	}
	if req.CarouselOrder != nil {
		data["carousel_order"] = *req.CarouselOrder
	}

	record, err := s.repos.Product.Create(ctx, data)
	if err != nil {
		return nil, err
	}

	s.invalidateCarousel(ctx)
	product, err := s.repos.Product.GetByID(ctx, recordID(record), false)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("product_id", product.ID).Str("sku", product.SKU).Msg("product created")
	return product, nil
}

// Get returns a product by id, or a not-found error.
func (s *ProductService) Get(ctx context.Context, id int64, includeInactive bool) (*repository.Product, error) {
	product, err := s.repos.Product.GetByID(ctx, id, includeInactive)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NotFound("product", id)
	}
	return product, nil
}

// List returns a page of products plus the total match count.
func (s *ProductService) List(ctx context.Context, filters repository.ProductFilters, opts repository.ListOptions) ([]*repository.Product, int64, error) {
	products, err := s.repos.Product.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, err
	}

	countFilters := map[string]interface{}{}
	if !filters.IncludeDeactivated {
		countFilters["active"] = true
	}
	if filters.Featured != nil {
		countFilters["featured"] = *filters.Featured
	}
	total, err := s.repos.Product.Count(ctx, countFilters)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Carousel returns the featured carousel, served from cache when warm.
func (s *ProductService) Carousel(ctx context.Context) ([]*repository.Product, error) {
	var cached []*repository.Product
	if s.cache.Get(ctx, carouselCacheKey, &cached) {
		return cached, nil
	}

	products, err := s.repos.Product.ListCarousel(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, carouselCacheKey, products)
	return products, nil
}

// Update patches a product.
func (s *ProductService) Update(ctx context.Context, id int64, req *UpdateProductRequest) (*repository.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	data := repository.Record{}
	if req.Name != nil {
		data["name"] = *req.Name
	}
	if req.Summary != nil {
		data["summary"] = *req.Summary
	}
	if req.Description != nil {
		data["description"] = *req.Description
	}
	if req.PriceUSD != nil {
		data["price_usd"] = *req.PriceUSD
	}
	if req.Stock != nil {
		data["stock"] = *req.Stock
	}
	if req.Featured != nil {
		data["featured"] = *req.Featured
	}
	if req.CarouselOrder != nil {
		data["carousel_order"] = *req.CarouselOrder
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("no fields to update", nil)
	}

	record, err := s.repos.Product.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}

	s.invalidateCarousel(ctx)
	return s.repos.Product.GetByID(ctx, recordID(record), true)
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id int64, audit repository.AuditInfo) error {
	if _, err := s.repos.Product.Delete(ctx, id, audit); err != nil {
		return err
	}
	s.invalidateCarousel(ctx)
	return nil
}

// Reactivate restores a soft-deleted product.
func (s *ProductService) Reactivate(ctx context.Context, id int64, reactivatedBy *int64) (*repository.Product, error) {
	record, err := s.repos.Product.Reactivate(ctx, id, reactivatedBy)
	if err != nil {
		return nil, err
	}
	s.invalidateCarousel(ctx)
	return s.repos.Product.GetByID(ctx, recordID(record), false)
}

func (s *ProductService) invalidateCarousel(ctx context.Context) {
	s.cache.Invalidate(ctx, carouselCacheKey)
}
