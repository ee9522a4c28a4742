package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SettingAutoSync gates whether opening the tool triggers a full sync.
const SettingAutoSync = "auto_sync_on_open"

// SettingsStore persists small key/value settings
type SettingsStore struct {
	store *Store
}

// NewSettingsStore creates a settings store over an open database
func NewSettingsStore(store *Store) *SettingsStore {
	return &SettingsStore{store: store}
}

// GetBool returns the stored boolean for key, or def when unset.
func (s *SettingsStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	var value string
	err := s.store.DB().QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value == "true", nil
}

// SetBool stores a boolean under key, replacing any prior value.
func (s *SettingsStore) SetBool(ctx context.Context, key string, value bool) error {
	str := "false"
	if value {
		str = "true"
	}
	_, err := s.store.DB().ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, str, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
