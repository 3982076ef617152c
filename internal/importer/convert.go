package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// Convert transforms a validated ImportSchema into a project owned by
// userID. Call ValidateImportSchema first; Convert assumes the schema is
// valid. The id and timestamps are left for the project service.
func Convert(schema *ImportSchema, userID string) (*domain.Project, error) {
	p := schema.Project
	project := &domain.Project{
		UserID:    userID,
		Name:      strings.TrimSpace(p.Name),
		Objective: strings.TrimSpace(p.Objective),
		Criteria: domain.Criteria{
			Location:   p.Location,
			StartDate:  p.StartDate,
			EndDate:    p.EndDate,
			Currency:   strings.ToUpper(p.Currency),
			Budget:     p.Budget,
			Duration:   p.Duration,
			BudgetType: p.BudgetType,
		},
	}

	if len(schema.Tasks) > 0 {
		tasks := make([]domain.Task, 0, len(schema.Tasks))
		for _, t := range schema.Tasks {
			task, err := convertTask(t)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
		project.Schedule = domain.NormalizeSchedule(tasks)
	}

	if len(schema.BudgetItems) > 0 {
		items := make([]domain.BudgetItem, len(schema.BudgetItems))
		for i, b := range schema.BudgetItems {
			items[i] = domain.BudgetItem{
				Category:           b.Category,
				Description:        b.Description,
				LaborHours:         b.LaborHours,
				LaborCost:          b.LaborCost,
				MaterialsCost:      b.MaterialsCost,
				ContingencyPercent: b.ContingencyPercent,
			}
		}
		project.Budget = &domain.Budget{BudgetItems: items}
	}

	return project, nil
}

func convertTask(t TaskImport) (domain.Task, error) {
	start, err := parseOptionalDate(t.Start)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %q start: %w", t.Ref, err)
	}
	end, err := parseOptionalDate(t.End)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %q end: %w", t.Ref, err)
	}

	return domain.Task{
		ID:           t.Ref,
		Name:         t.Name,
		Type:         domain.TaskType(domain.CoalesceStr(t.Type, string(domain.TaskTypeTask))),
		Project:      t.ParentRef,
		Start:        start,
		End:          end,
		Progress:     domain.IntFromPtrWithDefault(0, t.Progress),
		Cost:         domain.Float64FromPtrWithDefault(0, t.Cost),
		Resource:     t.Resource,
		Dependencies: t.DependsOn,
	}, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return datemath.ParseDate(s)
}
