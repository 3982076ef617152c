package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

var validTaskTypes = map[domain.TaskType]bool{
	"":                       true,
	domain.TaskTypeProject:   true,
	domain.TaskTypeTask:      true,
	domain.TaskTypeMilestone: true,
}

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	kinds := make(map[string]string, len(schema.Tasks))
	errs = append(errs, validateTaskRefs(schema.Tasks, kinds)...)
	errs = append(errs, validateTasks(schema.Tasks, kinds)...)
	errs = append(errs, validateBudget(schema.BudgetItems)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if strings.TrimSpace(p.Objective) == "" {
		errs = append(errs, fmt.Errorf("project.objective is required"))
	}
	start, startOK := checkDate(&errs, "project.start_date", p.StartDate)
	end, endOK := checkDate(&errs, "project.end_date", p.EndDate)
	if startOK && endOK && end.Before(start) {
		errs = append(errs, fmt.Errorf("project.end_date %q is before start_date %q", p.EndDate, p.StartDate))
	}
	return errs
}

// validateTaskRefs records each ref's type in kinds and reports missing
// or duplicate refs.
func validateTaskRefs(tasks []TaskImport, kinds map[string]string) []error {
	var errs []error
	for i, t := range tasks {
		if t.Ref == "" {
			errs = append(errs, fmt.Errorf("tasks[%d].ref is required", i))
			continue
		}
		if _, dup := kinds[t.Ref]; dup {
			errs = append(errs, fmt.Errorf("tasks[%d]: duplicate ref %q", i, t.Ref))
			continue
		}
		kinds[t.Ref] = t.Type
	}
	return errs
}

func validateTasks(tasks []TaskImport, kinds map[string]string) []error {
	var errs []error
	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if t.Ref != "" {
			prefix = fmt.Sprintf("task %q", t.Ref)
		}

		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", prefix))
		}
		if !validTaskTypes[domain.TaskType(t.Type)] {
			errs = append(errs, fmt.Errorf("%s: invalid type %q (expected project, task or milestone)", prefix, t.Type))
		}

		start, startOK := checkDate(&errs, prefix+".start", t.Start)
		end, endOK := checkDate(&errs, prefix+".end", t.End)
		if startOK && endOK && end.Before(start) {
			errs = append(errs, fmt.Errorf("%s: end %q is before start %q", prefix, t.End, t.Start))
		}

		if t.Progress != nil && (*t.Progress < 0 || *t.Progress > 100) {
			errs = append(errs, fmt.Errorf("%s: progress %d outside [0,100]", prefix, *t.Progress))
		}
		if t.Cost != nil && *t.Cost < 0 {
			errs = append(errs, fmt.Errorf("%s: cost must be >= 0", prefix))
		}

		if t.ParentRef != "" {
			switch kind, ok := kinds[t.ParentRef]; {
			case !ok:
				errs = append(errs, fmt.Errorf("%s: parent_ref %q not found", prefix, t.ParentRef))
			case kind != string(domain.TaskTypeProject):
				errs = append(errs, fmt.Errorf("%s: parent_ref %q is not a project task", prefix, t.ParentRef))
			}
		}
		for _, dep := range t.DependsOn {
			if dep == t.Ref {
				errs = append(errs, fmt.Errorf("%s: depends on itself", prefix))
				continue
			}
			if _, ok := kinds[dep]; !ok {
				errs = append(errs, fmt.Errorf("%s: depends_on %q not found", prefix, dep))
			}
		}
	}
	return errs
}

func validateBudget(items []BudgetItemImport) []error {
	var errs []error
	for i, b := range items {
		prefix := fmt.Sprintf("budget_items[%d]", i)
		if strings.TrimSpace(b.Category) == "" {
			errs = append(errs, fmt.Errorf("%s.category is required", prefix))
		}
		if b.LaborHours < 0 || b.LaborCost < 0 || b.MaterialsCost < 0 {
			errs = append(errs, fmt.Errorf("%s: amounts must be >= 0", prefix))
		}
		if b.ContingencyPercent < 0 || b.ContingencyPercent > 100 {
			errs = append(errs, fmt.Errorf("%s.contingency_percent %.2f outside [0,100]", prefix, b.ContingencyPercent))
		}
	}
	return errs
}

// checkDate parses an optional date, appending an error when malformed.
func checkDate(errs *[]error, field, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := datemath.ParseDate(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, s))
		return time.Time{}, false
	}
	return t, true
}
