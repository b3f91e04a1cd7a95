package services

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/repository"
)

const publicSettingsCacheKey = "settings:public"

// SettingsService exposes the key/value store with typed reads.
type SettingsService struct {
	repos  *repository.Repositories
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(deps Deps, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		repos:  deps.Repos,
		cache:  deps.Cache,
		logger: logger.With().Str("service", "settings").Logger(),
	}
}

// Public returns the storefront-visible settings as a key/value map, served
// from cache when warm.
func (s *SettingsService) Public(ctx context.Context) (map[string]string, error) {
	var cached map[string]string
	if s.cache.Get(ctx, publicSettingsCacheKey, &cached) {
		return cached, nil
	}

	settings, err := s.repos.Setting.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	public := make(map[string]string, len(settings))
	for _, setting := range settings {
		public[setting.Key] = setting.Value
	}

	s.cache.Set(ctx, publicSettingsCacheKey, public)
	return public, nil
}

// Get returns one setting, or a not-found error.
func (s *SettingsService) Get(ctx context.Context, key string) (*repository.Setting, error) {
	setting, err := s.repos.Setting.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, apperror.NotFound("setting", key)
	}
	return setting, nil
}

// GetBool reads a boolean setting, falling back when the key is absent or
// malformed.
func (s *SettingsService) GetBool(ctx context.Context, key string, fallback bool) bool {
	setting, err := s.repos.Setting.GetByKey(ctx, key)
	if err != nil || setting == nil {
		return fallback
	}
	value, err := strconv.ParseBool(setting.Value)
	if err != nil {
		s.logger.Warn().Str("key", key).Str("value", setting.Value).Msg("setting is not a boolean")
		return fallback
	}
	return value
}

// GetInt reads an integer setting, falling back when the key is absent or
// malformed.
func (s *SettingsService) GetInt(ctx context.Context, key string, fallback int64) int64 {
	setting, err := s.repos.Setting.GetByKey(ctx, key)
	if err != nil || setting == nil {
		return fallback
	}
	value, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		s.logger.Warn().Str("key", key).Str("value", setting.Value).Msg("setting is not an integer")
		return fallback
	}
	return value
}

// Set stores a setting and refreshes the public cache.
func (s *SettingsService) Set(ctx context.Context, key, value, valueType string, public bool) (*repository.Setting, error) {
	if key == "" {
		return nil, apperror.Validation("setting key is required", "key")
	}
	switch valueType {
	case "string", "number", "boolean", "json":
	default:
		return nil, apperror.Validation("unknown setting type "+valueType, "type")
	}

	setting, err := s.repos.Setting.SetValue(ctx, key, value, valueType, public)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, publicSettingsCacheKey)
	return setting, nil
}
