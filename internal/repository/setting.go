package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// Setting is one key/value configuration row. Values are stored as text and
// parsed by the settings service.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"` // string, number, boolean, json
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingRepository handles settings data access. The settings table does
// not follow the soft-delete convention, so GetByID bypasses the active
// filter.
type SettingRepository struct {
	*Repository
}

// NewSettingRepository creates a settings repository.
func NewSettingRepository(client postgrest.Client, logger zerolog.Logger) *SettingRepository {
	return &SettingRepository{Repository: New(client, "settings", logger)}
}

func decodeSetting(r Record) *Setting {
	return &Setting{
		ID:        recInt64(r, "id"),
		Key:       recString(r, "key"),
		Value:     recString(r, "value"),
		Type:      recString(r, "type"),
		Public:    recBool(r, "public"),
		CreatedAt: recTime(r, "created_at"),
		UpdatedAt: recTime(r, "updated_at"),
	}
}

// GetByKey returns the setting with the given key, or nil.
func (r *SettingRepository) GetByKey(ctx context.Context, key string) (*Setting, error) {
	record, err := r.client.From(r.table).
		Select("*").
		Eq("key", key).
		Single(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, WrapError(err, "getByKey", r.table, r.logger)
	}
	return decodeSetting(record), nil
}

// SetValue updates the value of an existing key, creating the row when
// absent.
func (r *SettingRepository) SetValue(ctx context.Context, key, value, valueType string, public bool) (*Setting, error) {
	existing, err := r.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		record, err := r.Create(ctx, Record{
			"key":    key,
			"value":  value,
			"type":   valueType,
			"public": public,
		})
		if err != nil {
			return nil, err
		}
		return decodeSetting(record), nil
	}

	record, err := r.Update(ctx, existing.ID, Record{
		"value":  value,
		"type":   valueType,
		"public": public,
	})
	if err != nil {
		return nil, err
	}
	return decodeSetting(record), nil
}

// ListPublic returns settings exposed to the storefront.
func (r *SettingRepository) ListPublic(ctx context.Context) ([]*Setting, error) {
	records, err := r.client.From(r.table).
		Select("*").
		Eq("public", true).
		Order("key", true).
		Execute(ctx)
	if err != nil {
		return nil, WrapError(err, "listPublic", r.table, r.logger)
	}

	settings := make([]*Setting, len(records))
	for i, rec := range records {
		settings[i] = decodeSetting(rec)
	}
	return settings, nil
}
