package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
)

// Task is one row of a generated schedule. Project-typed tasks group
// task and milestone rows through the child's Project field.
type Task struct {
	ID           string
	Name         string
	Start        time.Time
	End          time.Time
	Progress     int
	Type         TaskType
	Project      string
	Dependencies []string
	Cost         float64
	Resource     string
}

// taskJSON is the wire form; dates travel as YYYY-MM-DD strings.
type taskJSON struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Progress     int      `json:"progress"`
	Type         TaskType `json:"type"`
	Project      string   `json:"project,omitempty"`
	Dependencies []string `json:"dependencies"`
	Cost         float64  `json:"cost"`
	Resource     string   `json:"resource"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	deps := t.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return json.Marshal(taskJSON{
		ID:           t.ID,
		Name:         t.Name,
		Start:        datemath.FormatDate(t.Start),
		End:          datemath.FormatDate(t.End),
		Progress:     t.Progress,
		Type:         t.Type,
		Project:      t.Project,
		Dependencies: deps,
		Cost:         t.Cost,
		Resource:     t.Resource,
	})
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseOptionalDate(raw.Start)
	if err != nil {
		return fmt.Errorf("task %q start: %w", raw.ID, err)
	}
	end, err := parseOptionalDate(raw.End)
	if err != nil {
		return fmt.Errorf("task %q end: %w", raw.ID, err)
	}
	*t = Task{
		ID:           raw.ID,
		Name:         raw.Name,
		Start:        start,
		End:          end,
		Progress:     raw.Progress,
		Type:         raw.Type,
		Project:      raw.Project,
		Dependencies: raw.Dependencies,
		Cost:         raw.Cost,
		Resource:     raw.Resource,
	}
	if t.Type == "" {
		t.Type = TaskTypeTask
	}
	return nil
}

// IsProject reports whether the task is a grouping row.
func (t Task) IsProject() bool {
	return t.Type == TaskTypeProject
}

// HasParent reports whether the task belongs to a project row.
func (t Task) HasParent() bool {
	return t.Project != ""
}

// parseOptionalDate is datemath.ParseDate with empty input allowed.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return datemath.ParseDate(s)
}
