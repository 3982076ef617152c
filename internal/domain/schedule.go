package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSchedule is wrapped by every schedule invariant violation.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ValidateSchedule checks the structural invariants of a task list.
// Dependencies on unknown ids are tolerated; they are simply not drawn.
func ValidateSchedule(tasks []Task) error {
	byID := make(map[string]Task, len(tasks))
	var errs []error
	for _, t := range tasks {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%w: task %q has no id", ErrInvalidSchedule, t.Name))
			continue
		}
		if _, dup := byID[t.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate task id %q", ErrInvalidSchedule, t.ID))
			continue
		}
		byID[t.ID] = t
	}

	for _, t := range tasks {
		if !t.Start.IsZero() && !t.End.IsZero() && t.End.Before(t.Start) {
			errs = append(errs, fmt.Errorf("%w: task %q ends before it starts", ErrInvalidSchedule, t.ID))
		}
		if t.Progress < 0 || t.Progress > 100 {
			errs = append(errs, fmt.Errorf("%w: task %q progress %d outside [0,100]", ErrInvalidSchedule, t.ID, t.Progress))
		}
		if t.HasParent() && !t.IsProject() {
			parent, ok := byID[t.Project]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%w: task %q references missing project %q", ErrInvalidSchedule, t.ID, t.Project))
			case !parent.IsProject():
				errs = append(errs, fmt.Errorf("%w: task %q parent %q is not a project", ErrInvalidSchedule, t.ID, t.Project))
			}
		}
	}
	return errors.Join(errs...)
}

// NormalizeSchedule clamps field-level values a generator may get wrong.
// It returns a new slice; the input is left untouched.
func NormalizeSchedule(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.Progress < 0 {
			t.Progress = 0
		}
		if t.Progress > 100 {
			t.Progress = 100
		}
		if t.Cost < 0 {
			t.Cost = 0
		}
		if t.Type == "" {
			t.Type = TaskTypeTask
		}
		if !t.Start.IsZero() && !t.End.IsZero() && t.End.Before(t.Start) {
			t.End = t.Start
		}
		out[i] = t
	}
	return out
}

// TaskIndex maps task ids to their position in the list.
func TaskIndex(tasks []Task) map[string]int {
	idx := make(map[string]int, len(tasks))
	for i, t := range tasks {
		idx[t.ID] = i
	}
	return idx
}
