package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ProjectRepo persists whole projects. Lookups are scoped to the owner so a
// user can never read another user's rows.
type ProjectRepo interface {
	Upsert(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, userID, id string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Project, error)
	Delete(ctx context.Context, userID, id string) error
}

type SettingsRepo interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, s *domain.UserSettings) error
}

// HistoryRepo keeps a capped, most-recent-first list per user and feature.
type HistoryRepo interface {
	Push(ctx context.Context, e *domain.HistoryEntry) error
	List(ctx context.Context, userID string, feature domain.HistoryFeature) ([]*domain.HistoryEntry, error)
	Clear(ctx context.Context, userID string, feature domain.HistoryFeature) error
}
