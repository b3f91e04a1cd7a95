package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// Product is the catalog entity.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	SKU           string    `json:"sku"`
	PriceUSD      float64   `json:"price_usd"`
	Stock         int64     `json:"stock"`
	Featured      bool      `json:"featured"`
	CarouselOrder *int64    `json:"carousel_order,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Audit
}

// ProductFilters is the product-specific filter vocabulary, translated into
// the generic ListFilters before hitting the base repository.
type ProductFilters struct {
	Featured           *bool
	Search             string // matches name and description
	IncludeDeactivated bool
}

// ProductRepository handles product data access.
type ProductRepository struct {
	*Repository
}

// NewProductRepository creates a product repository.
func NewProductRepository(client postgrest.Client, logger zerolog.Logger) *ProductRepository {
	return &ProductRepository{Repository: New(client, "products", logger)}
}

func decodeProduct(r Record) *Product {
	return &Product{
		ID:            recInt64(r, "id"),
		Name:          recString(r, "name"),
		Summary:       recString(r, "summary"),
		Description:   recString(r, "description"),
		SKU:           recString(r, "sku"),
		PriceUSD:      recFloat64(r, "price_usd"),
		Stock:         recInt64(r, "stock"),
		Featured:      recBool(r, "featured"),
		CarouselOrder: recInt64Ptr(r, "carousel_order"),
		CreatedAt:     recTime(r, "created_at"),
		UpdatedAt:     recTime(r, "updated_at"),
		Audit:         decodeAudit(r),
	}
}

func decodeProducts(records []Record) []*Product {
	products := make([]*Product, len(records))
	for i, r := range records {
		products[i] = decodeProduct(r)
	}
	return products
}

// GetByID returns the product or nil when absent.
func (r *ProductRepository) GetByID(ctx context.Context, id int64, includeInactive bool) (*Product, error) {
	record, err := r.FindByID(ctx, id, includeInactive)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeProduct(record), nil
}

// GetBySKU returns the active product with the given SKU, or nil.
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	record, err := r.client.From(r.table).
		Select("*").
		Eq("sku", sku).
		Eq("active", true).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "getBySku", r.table, r.logger)
	}
	return decodeProduct(record), nil
}

// List returns products matching the filters.
func (r *ProductRepository) List(ctx context.Context, filters ProductFilters, opts ListOptions) ([]*Product, error) {
	generic := ListFilters{
		Equals:             map[string]interface{}{},
		IncludeDeactivated: filters.IncludeDeactivated,
	}
	if filters.Featured != nil {
		generic.Equals["featured"] = *filters.Featured
	}
	if filters.Search != "" {
		generic.Search = filters.Search
		generic.SearchColumns = []string{"name", "description"}
	}

	records, err := r.FindAll(ctx, generic, opts)
	if err != nil {
		return nil, err
	}
	return decodeProducts(records), nil
}

// ListCarousel returns featured products in carousel order.
func (r *ProductRepository) ListCarousel(ctx context.Context) ([]*Product, error) {
	featured := true
	return r.List(ctx, ProductFilters{Featured: &featured}, ListOptions{
		OrderBy:   "carousel_order",
		Ascending: true,
	})
}
