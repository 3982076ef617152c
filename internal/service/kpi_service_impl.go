package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/kpi"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type kpiService struct {
	projects repository.ProjectRepo
}

func NewKPIService(projects repository.ProjectRepo) KPIService {
	return &kpiService{projects: projects}
}

func (s *kpiService) Snapshot(ctx context.Context, userID, projectID string, now time.Time) (*KPIResult, error) {
	p, err := s.projects.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.Schedule) == 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNoSchedule)
	}
	snap := kpi.CalculateKPIs(p.Schedule, p.Budget, now)
	return &KPIResult{
		Snapshot: snap,
		Health:   kpi.Health(snap),
		Signals:  kpi.Signals(snap),
		AsOf:     now,
	}, nil
}
