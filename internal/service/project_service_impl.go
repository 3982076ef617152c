package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	observer UseCaseObserver
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepo, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		projects: projects,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	done := track(ctx, s.observer, "create-project", p.UserID, map[string]any{})
	defer func() { done(err) }()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Objective = strings.TrimSpace(p.Objective)
	if err = p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err = normalizeSchedule(p); err != nil {
		return err
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.projects.Upsert(ctx, p)
}

func (s *projectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, userID, id)
}

func (s *projectService) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// Update replaces the stored project as a whole. The creation time is
// kept from the stored row.
func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	done := track(ctx, s.observer, "update-project", p.UserID, map[string]any{"project_id": p.ID})
	defer func() { done(err) }()

	if err = p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var existing *domain.Project
	existing, err = s.projects.GetByID(ctx, p.UserID, p.ID)
	if err != nil {
		return err
	}
	if err = normalizeSchedule(p); err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	return s.projects.Upsert(ctx, p)
}

// normalizeSchedule clamps the stored schedule and rejects one that breaks
// the task invariants.
func normalizeSchedule(p *domain.Project) error {
	if len(p.Schedule) == 0 {
		return nil
	}
	p.Schedule = domain.NormalizeSchedule(p.Schedule)
	if err := domain.ValidateSchedule(p.Schedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *projectService) Delete(ctx context.Context, userID, id string) (err error) {
	done := track(ctx, s.observer, "delete-project", userID, map[string]any{"project_id": id})
	defer func() { done(err) }()

	return s.projects.Delete(ctx, userID, id)
}
