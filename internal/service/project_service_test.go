package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

func TestProjectService_CreateAssignsIDAndTimestamps(t *testing.T) {
	repos := setupRepos(t)
	obs := &recordingObserver{}
	svc := NewProjectService(repos.projects, obs)
	ctx := context.Background()

	p := &domain.Project{UserID: "u1", Objective: "  Launch a podcast  "}
	require.NoError(t, svc.Create(ctx, p))
	assert.NotEmpty(t, p.ID, "UUID should be generated")
	assert.Equal(t, "Launch a podcast", p.Objective)
	assert.False(t, p.CreatedAt.IsZero())

	fetched, err := svc.Get(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch a podcast", fetched.Objective)

	ev := obs.last()
	assert.Equal(t, "create-project", ev.Name)
	assert.Equal(t, "u1", ev.UserID)
	assert.True(t, ev.Success)
}

func TestProjectService_CreateRejectsInvalid(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	ctx := context.Background()

	tests := []struct {
		name string
		p    *domain.Project
	}{
		{"empty objective", &domain.Project{UserID: "u1", Objective: " "}},
		{"no owner", &domain.Project{Objective: "x"}},
		{"end before start", &domain.Project{UserID: "u1", Objective: "x",
			Criteria: domain.Criteria{StartDate: "2024-05-01", EndDate: "2024-04-01"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Create(ctx, tc.p), ErrInvalidInput)
		})
	}
}

func TestProjectService_CreateRejectsBrokenSchedule(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	ctx := context.Background()

	p := &domain.Project{UserID: "u1", Objective: "Open a bakery", Schedule: []domain.Task{{
		ID:       "t1",
		Name:     "Fit out",
		Type:     domain.TaskTypeTask,
		Project:  "ghost",
		Start:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Progress: 250,
	}}}
	err := svc.Create(ctx, p)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
	assert.ErrorContains(t, err, `missing project "ghost"`)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_CreateNormalizesSchedule(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	ctx := context.Background()

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	p := &domain.Project{UserID: "u1", Objective: "Open a bakery", Schedule: []domain.Task{{
		ID:       "t1",
		Name:     "Fit out",
		Start:    start,
		End:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Progress: 250,
	}}}
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.Get(ctx, "u1", p.ID)
	require.NoError(t, err)
	require.Len(t, got.Schedule, 1)
	task := got.Schedule[0]
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, domain.TaskTypeTask, task.Type)
	assert.True(t, start.Equal(task.End), "end is clamped to start")

	// The stored schedule must survive a full replace.
	require.NoError(t, svc.Update(ctx, got))
}

func TestProjectService_UpdateKeepsCreatedAt(t *testing.T) {
	repos := setupRepos(t)
	svc := NewProjectService(repos.projects)
	ctx := context.Background()

	p := &domain.Project{UserID: "u1", Objective: "Renovate the office"}
	require.NoError(t, svc.Create(ctx, p))
	created := p.CreatedAt

	update := &domain.Project{
		ID:        p.ID,
		UserID:    "u1",
		Objective: "Renovate the office",
		Name:      "Office",
		Schedule:  testutil.ScenarioSchedule(),
		CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.Update(ctx, update))

	got, err := svc.Get(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)
	assert.Len(t, got.Schedule, 3)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestProjectService_UpdateRejectsBrokenSchedule(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	ctx := context.Background()

	p := &domain.Project{UserID: "u1", Objective: "x"}
	require.NoError(t, svc.Create(ctx, p))

	p.Schedule = []domain.Task{
		testutil.NewTestTask("t1", testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 2), testutil.WithParent("missing")),
	}
	err := svc.Update(ctx, p)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestProjectService_UpdateUnknownIsNotFound(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	err := svc.Update(context.Background(), &domain.Project{ID: "ghost", UserID: "u1", Objective: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_ListAndDeleteAreOwnerScoped(t *testing.T) {
	svc := NewProjectService(setupRepos(t).projects)
	ctx := context.Background()

	mine := &domain.Project{UserID: "u1", Objective: "mine"}
	theirs := &domain.Project{UserID: "u2", Objective: "theirs"}
	require.NoError(t, svc.Create(ctx, mine))
	require.NoError(t, svc.Create(ctx, theirs))

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Objective)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", theirs.ID), repository.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", mine.ID))

	_, err = svc.Get(ctx, "u1", mine.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
