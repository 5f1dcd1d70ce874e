package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alamarhq/alamar/internal/apperrors"
)

// SettingsRepo is a plain key-value store with JSON values. The only key
// the core reads is "platform_fee_rate".
type SettingsRepo struct {
	DB DBTX
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.QueryRow(ctx, "SELECT value::text FROM settings WHERE key = $1", key).Scan(&value)

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, pgx.ErrNoRows):
		return "", apperrors.ErrSettingNotFound
	default:
		return "", fmt.Errorf("db error: %w", err)
	}
}

const setSetting = `-- name: SetSetting
INSERT INTO settings (key, value)
VALUES ($1, $2::jsonb)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

func (r *SettingsRepo) Set(ctx context.Context, key string, value string) error {
	_, err := r.DB.Exec(ctx, setSetting, key, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
