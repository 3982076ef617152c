package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

func TestKPIService_SnapshotFromStoredSchedule(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	p := testutil.NewTestProject("u1", "Ship v2",
		testutil.WithSchedule(testutil.ScenarioSchedule()...),
		testutil.WithBudget(testutil.ScenarioBudget()...))
	require.NoError(t, repos.projects.Upsert(ctx, p))

	now := testutil.Date(2024, 3, 31)
	res, err := NewKPIService(repos.projects).Snapshot(ctx, "u1", p.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 8050.0, res.Snapshot.BudgetAtCompletion)
	assert.Equal(t, 60, res.Snapshot.PlannedDuration)
	assert.Equal(t, 0.93, res.Snapshot.SPI)
	assert.Equal(t, domain.HealthAtRisk, res.Health)
	assert.Equal(t, now, res.AsOf)
}

func TestKPIService_Errors(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	svc := NewKPIService(repos.projects)

	_, err := svc.Snapshot(ctx, "u1", "missing", testutil.Date(2024, 1, 1))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	p := testutil.NewTestProject("u1", "No schedule yet")
	require.NoError(t, repos.projects.Upsert(ctx, p))
	_, err = svc.Snapshot(ctx, "u1", p.ID, testutil.Date(2024, 1, 1))
	assert.ErrorIs(t, err, ErrNoSchedule)
}
