package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusworks/registrar-api/internal/models"
)

// SettingsRepository persists key/value settings in the academic database.
// Reads go straight to the database on every call; there is no caching layer
// in front of the maintenance flag.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches a single setting by key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, value, updated_by, updated_at FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetBool reads a boolean setting; a missing key reads as false.
func (r *SettingsRepository) GetBool(ctx context.Context, key string) (bool, error) {
	setting, err := r.Get(ctx, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}
	value, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return false, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return value, nil
}

// Upsert inserts or updates a setting entry.
func (r *SettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	const query = `INSERT INTO settings (key, value, updated_by, updated_at)
VALUES (:key, :value, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	setting.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// SetBool writes a boolean setting.
func (r *SettingsRepository) SetBool(ctx context.Context, key string, value bool, updatedBy *string) error {
	return r.Upsert(ctx, &models.Setting{Key: key, Value: strconv.FormatBool(value), UpdatedBy: updatedBy})
}
