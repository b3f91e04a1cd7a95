package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// ProductImage is one stored rendition of a product photo. Each upload
// produces several size variants sharing a file_hash.
type ProductImage struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	URL        string    `json:"url"`
	Size       string    `json:"size"` // thumb, small, medium, large
	FileHash   string    `json:"file_hash"`
	IsPrimary  bool      `json:"is_primary"`
	ImageIndex int64     `json:"image_index"`
	CreatedAt  time.Time `json:"created_at"`
	Audit
}

// ImageRepository handles product image data access.
type ImageRepository struct {
	*Repository
}

// NewImageRepository creates a product image repository.
func NewImageRepository(client postgrest.Client, logger zerolog.Logger) *ImageRepository {
	return &ImageRepository{Repository: New(client, "product_images", logger)}
}

func decodeImage(r Record) *ProductImage {
	return &ProductImage{
		ID:         recInt64(r, "id"),
		ProductID:  recInt64(r, "product_id"),
		URL:        recString(r, "url"),
		Size:       recString(r, "size"),
		FileHash:   recString(r, "file_hash"),
		IsPrimary:  recBool(r, "is_primary"),
		ImageIndex: recInt64(r, "image_index"),
		CreatedAt:  recTime(r, "created_at"),
		Audit:      decodeAudit(r),
	}
}

// ListByProduct returns the active images of a product, optionally filtered
// to one size variant, ordered by image index.
func (r *ImageRepository) ListByProduct(ctx context.Context, productID int64, size string) ([]*ProductImage, error) {
	query := r.client.From(r.table).
		Select("*").
		Eq("product_id", productID).
		Eq("active", true)
	if size != "" {
		query = query.Eq("size", size)
	}

	records, err := query.Order("image_index", true).Execute(ctx)
	if err != nil {
		return nil, WrapError(err, "listByProduct", r.table, r.logger)
	}

	images := make([]*ProductImage, len(records))
	for i, rec := range records {
		images[i] = decodeImage(rec)
	}
	return images, nil
}

// GetPrimary returns the primary image of a product in the given size, or
// nil when the product has no primary image.
func (r *ImageRepository) GetPrimary(ctx context.Context, productID int64, size string) (*ProductImage, error) {
	record, err := r.client.From(r.table).
		Select("*").
		Eq("product_id", productID).
		Eq("size", size).
		Eq("is_primary", true).
		Eq("active", true).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "getPrimary", r.table, r.logger)
	}
	return decodeImage(record), nil
}

// SetPrimary marks one image index of a product as primary and clears the
// flag everywhere else. Two conditional updates, not a transaction; a
// concurrent writer can interleave, which the storefront tolerates.
func (r *ImageRepository) SetPrimary(ctx context.Context, productID, imageIndex int64) error {
	_, err := r.client.From(r.table).
		Update(Record{"is_primary": false}).
		Eq("product_id", productID).
		Eq("is_primary", true).
		Execute(ctx)
	if err != nil {
		return WrapError(err, "setPrimary", r.table, r.logger)
	}

	_, err = r.client.From(r.table).
		Update(Record{"is_primary": true}).
		Eq("product_id", productID).
		Eq("image_index", imageIndex).
		Execute(ctx)
	if err != nil {
		return WrapError(err, "setPrimary", r.table, r.logger)
	}
	return nil
}
