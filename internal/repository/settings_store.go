package repository

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/models"
)

// settingsStore reads tuning values from the settings table, falling back to
// the supplied default when the key is missing or unparsable.
type settingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) interfaces.SettingsStore {
	return &settingsStore{db: db}
}

func (s *settingsStore) lookup(ctx context.Context, key string) (string, bool) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", false
		}
		return "", false
	}
	return setting.Value, true
}

func (s *settingsStore) GetString(ctx context.Context, key, defaultValue string) string {
	if value, ok := s.lookup(ctx, key); ok {
		return value
	}
	return defaultValue
}

func (s *settingsStore) GetInt(ctx context.Context, key string, defaultValue int) int {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *settingsStore) GetFloat(ctx context.Context, key string, defaultValue float64) float64 {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *settingsStore) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}
