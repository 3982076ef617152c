package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// SQLSettingsRepo implements SettingsRepo, one row per user.
type SQLSettingsRepo struct {
	queryer
}

func NewSettingsRepo(conn db.DBTX, dialect db.Dialect) *SQLSettingsRepo {
	return &SQLSettingsRepo{queryer{db: conn, dialect: dialect}}
}

func (r *SQLSettingsRepo) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	query := `SELECT user_id, provider, api_key, model, language, updated_at
		FROM user_settings WHERE user_id = ?`

	var s domain.UserSettings
	var updatedAt string
	err := r.db.QueryRowContext(ctx, r.q(query), userID).Scan(
		&s.UserID, &s.Provider, &s.APIKey, &s.Model, &s.Language, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning settings: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

func (r *SQLSettingsRepo) Upsert(ctx context.Context, s *domain.UserSettings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	query := `INSERT INTO user_settings (user_id, provider, api_key, model, language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			provider = excluded.provider,
			api_key = excluded.api_key,
			model = excluded.model,
			language = excluded.language,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, r.q(query),
		s.UserID, s.Provider, s.APIKey, s.Model, s.Language, formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}
