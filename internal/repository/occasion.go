package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// Occasion groups products by purchase occasion (birthday, anniversary, ...).
type Occasion struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int64     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Audit
}

// OccasionRepository handles occasion data access.
type OccasionRepository struct {
	*Repository
}

// NewOccasionRepository creates an occasion repository.
func NewOccasionRepository(client postgrest.Client, logger zerolog.Logger) *OccasionRepository {
	return &OccasionRepository{Repository: New(client, "occasions", logger)}
}

func decodeOccasion(r Record) *Occasion {
	return &Occasion{
		ID:           recInt64(r, "id"),
		Name:         recString(r, "name"),
		Slug:         recString(r, "slug"),
		Description:  recString(r, "description"),
		DisplayOrder: recInt64(r, "display_order"),
		CreatedAt:    recTime(r, "created_at"),
		UpdatedAt:    recTime(r, "updated_at"),
		Audit:        decodeAudit(r),
	}
}

// GetByID returns the occasion or nil when absent.
func (r *OccasionRepository) GetByID(ctx context.Context, id int64, includeInactive bool) (*Occasion, error) {
	record, err := r.FindByID(ctx, id, includeInactive)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeOccasion(record), nil
}

// GetBySlug returns the active occasion with the given slug, or nil.
func (r *OccasionRepository) GetBySlug(ctx context.Context, slug string) (*Occasion, error) {
	record, err := r.client.From(r.table).
		Select("*").
		Eq("slug", slug).
		Eq("active", true).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "getBySlug", r.table, r.logger)
	}
	return decodeOccasion(record), nil
}

// List returns occasions in display order.
func (r *OccasionRepository) List(ctx context.Context, includeDeactivated bool) ([]*Occasion, error) {
	records, err := r.FindAll(ctx,
		ListFilters{IncludeDeactivated: includeDeactivated},
		ListOptions{OrderBy: "display_order", Ascending: true})
	if err != nil {
		return nil, err
	}

	occasions := make([]*Occasion, len(records))
	for i, rec := range records {
		occasions[i] = decodeOccasion(rec)
	}
	return occasions, nil
}
