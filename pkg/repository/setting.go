package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
)

// SettingRepository handles setting-related database operations
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetSetting retrieves a setting value, found is false if the setting was never stored
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (value string, found bool, err error) {
	err = r.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return value, true, nil
}

// UpdateSetting stores a setting value. Returns false without touching the row
// if the stored value is the same already.
func (r *SettingRepository) UpdateSetting(ctx context.Context, key, value string) (changed bool, err error) {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		WHERE settings.value <> excluded.value
	`
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err = retrier.Do(ctx, func() error {
		res, execErr := r.db.ExecContext(ctx, query, key, value)
		if execErr != nil {
			if isLockError(execErr) {
				return execErr // retry
			}
			return &criticalError{err: execErr}
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return &criticalError{err: raErr}
		}
		changed = affected > 0
		return nil
	}, errCritical)
	if err != nil {
		return false, fmt.Errorf("update setting: %w", err)
	}
	return changed, nil
}
