// Package calendar exports a schedule to Google Calendar as all-day events.
package calendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// taskIDProperty tags each event with the task it came from.
const taskIDProperty = "planpilot_task_id"

// Exporter inserts schedule rows into a calendar.
type Exporter struct {
	srv *gcal.Service
}

// NewExporter builds the Calendar v3 client. Pass option.WithTokenSource
// for real use; tests pass option.WithEndpoint and option.WithHTTPClient.
func NewExporter(ctx context.Context, opts ...option.ClientOption) (*Exporter, error) {
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar client: %w", err)
	}
	return &Exporter{srv: srv}, nil
}

// NewTokenExporter is NewExporter authenticated with ts.
func NewTokenExporter(ctx context.Context, ts oauth2.TokenSource) (*Exporter, error) {
	return NewExporter(ctx, option.WithTokenSource(ts))
}

// Result counts what Export did.
type Result struct {
	Created  int
	Skipped  int
	EventIDs []string
}

// Export inserts one all-day event per task and milestone. Project rows
// and rows without dates are skipped. It stops at the first failed insert
// and reports what was created so far.
func (e *Exporter) Export(ctx context.Context, calendarID string, tasks []domain.Task) (Result, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	var res Result
	for _, t := range tasks {
		ev, ok := EventFor(t)
		if !ok {
			res.Skipped++
			continue
		}
		created, err := e.srv.Events.Insert(calendarID, ev).Context(ctx).Do()
		if err != nil {
			return res, fmt.Errorf("inserting event for task %s: %w", t.ID, err)
		}
		res.Created++
		res.EventIDs = append(res.EventIDs, created.Id)
	}
	return res, nil
}

// EventFor maps a task to an all-day event. The Calendar API end date is
// exclusive, so the event ends the day after the task.
func EventFor(t domain.Task) (*gcal.Event, bool) {
	if t.IsProject() || t.Start.IsZero() || t.End.IsZero() {
		return nil, false
	}
	summary := t.Name
	if t.Type == domain.TaskTypeMilestone {
		summary = "◆ " + summary
	}
	return &gcal.Event{
		Summary:     summary,
		Description: fmt.Sprintf("Progress: %d%%", t.Progress),
		Start:       &gcal.EventDateTime{Date: datemath.FormatDate(t.Start)},
		End:         &gcal.EventDateTime{Date: datemath.FormatDate(datemath.AddDays(t.End, 1))},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: t.ID},
		},
	}, true
}
