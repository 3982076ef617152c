package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// Date is a UTC midnight shorthand for fixtures.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Project options
type ProjectOption func(*domain.Project)

func WithName(name string) ProjectOption {
	return func(p *domain.Project) { p.Name = name }
}

func WithCriteria(c domain.Criteria) ProjectOption {
	return func(p *domain.Project) { p.Criteria = c }
}

func WithSchedule(tasks ...domain.Task) ProjectOption {
	return func(p *domain.Project) { p.Schedule = tasks }
}

func WithBudget(items ...domain.BudgetItem) ProjectOption {
	return func(p *domain.Project) { p.Budget = &domain.Budget{BudgetItems: items} }
}

func WithUpdatedAt(t time.Time) ProjectOption {
	return func(p *domain.Project) { p.UpdatedAt = t }
}

func NewTestProject(userID, objective string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		UserID:    userID,
		Objective: objective,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithProgress(pct int) TaskOption {
	return func(t *domain.Task) { t.Progress = pct }
}

func WithType(tt domain.TaskType) TaskOption {
	return func(t *domain.Task) { t.Type = tt }
}

func WithParent(projectID string) TaskOption {
	return func(t *domain.Task) { t.Project = projectID }
}

func WithDependencies(ids ...string) TaskOption {
	return func(t *domain.Task) { t.Dependencies = ids }
}

func WithCost(c float64) TaskOption {
	return func(t *domain.Task) { t.Cost = c }
}

func NewTestTask(id string, start, end time.Time, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:    id,
		Name:  "Task " + id,
		Start: start,
		End:   end,
		Type:  domain.TaskTypeTask,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// ScenarioSchedule is the reference schedule: a two-month project row
// with two dependent child tasks.
func ScenarioSchedule() []domain.Task {
	return []domain.Task{
		NewTestTask("p1", Date(2024, 3, 1), Date(2024, 4, 30), WithType(domain.TaskTypeProject), WithProgress(40)),
		NewTestTask("t1", Date(2024, 3, 1), Date(2024, 3, 15), WithParent("p1"), WithProgress(100)),
		NewTestTask("t2", Date(2024, 3, 16), Date(2024, 3, 30), WithParent("p1"), WithDependencies("t1")),
	}
}

// ScenarioBudget totals 8050: 5000 labor, 2000 materials, 15% contingency.
func ScenarioBudget() []domain.BudgetItem {
	return []domain.BudgetItem{{Category: "Delivery", LaborCost: 5000, MaterialsCost: 2000, ContingencyPercent: 15}}
}

// NewTestHistoryEntry builds an entry without id or timestamp so Push
// assigns them.
func NewTestHistoryEntry(userID string, feature domain.HistoryFeature, input string) *domain.HistoryEntry {
	return &domain.HistoryEntry{UserID: userID, Feature: feature, Input: input, Output: "out:" + input}
}
