package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// scheduleInput is the file accepted by kpi and timeline: a task array,
// or an object with tasks and an optional budget.
type scheduleInput struct {
	Tasks  []domain.Task  `json:"tasks"`
	Budget *domain.Budget `json:"budget,omitempty"`
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func parseScheduleInput(data []byte) (scheduleInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return scheduleInput{}, nil
	}
	if data[0] == '[' {
		var tasks []domain.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return scheduleInput{}, fmt.Errorf("parsing tasks: %w", err)
		}
		return scheduleInput{Tasks: tasks}, nil
	}
	var in scheduleInput
	if err := json.Unmarshal(data, &in); err != nil {
		return scheduleInput{}, fmt.Errorf("parsing schedule: %w", err)
	}
	return in, nil
}

// loadSchedule resolves the tasks and budget for a command from either a
// stored project or an input file.
func loadSchedule(cmd *cobra.Command, app *App, projectRef, file string) (scheduleInput, *domain.Project, error) {
	switch {
	case projectRef != "" && file != "":
		return scheduleInput{}, nil, fmt.Errorf("use either --project or --file, not both")
	case projectRef != "":
		p, err := findProject(commandContext(cmd), app, projectRef)
		if err != nil {
			return scheduleInput{}, nil, err
		}
		return scheduleInput{Tasks: p.Schedule, Budget: p.Budget}, p, nil
	case file != "":
		data, err := readInput(cmd, file)
		if err != nil {
			return scheduleInput{}, nil, err
		}
		in, err := parseScheduleInput(data)
		if err != nil {
			return scheduleInput{}, nil, err
		}
		in.Tasks = domain.NormalizeSchedule(in.Tasks)
		return in, nil, nil
	default:
		return scheduleInput{}, nil, fmt.Errorf("a --project or --file is required")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
