package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type historyService struct {
	history repository.HistoryRepo
}

func NewHistoryService(history repository.HistoryRepo) HistoryService {
	return &historyService{history: history}
}

func validFeature(f domain.HistoryFeature) error {
	if !domain.ValidHistoryFeatures[f] {
		return fmt.Errorf("%w: unknown history feature %q", ErrInvalidInput, f)
	}
	return nil
}

// Record pushes an entry; the repository trims the list to
// domain.HistoryLimit.
func (s *historyService) Record(ctx context.Context, userID string, feature domain.HistoryFeature, input, output string) error {
	if err := validFeature(feature); err != nil {
		return err
	}
	return s.history.Push(ctx, &domain.HistoryEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Feature:   feature,
		Input:     input,
		Output:    output,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *historyService) List(ctx context.Context, userID string, feature domain.HistoryFeature) ([]*domain.HistoryEntry, error) {
	if err := validFeature(feature); err != nil {
		return nil, err
	}
	return s.history.List(ctx, userID, feature)
}

func (s *historyService) Clear(ctx context.Context, userID string, feature domain.HistoryFeature) error {
	if err := validFeature(feature); err != nil {
		return err
	}
	return s.history.Clear(ctx, userID, feature)
}
