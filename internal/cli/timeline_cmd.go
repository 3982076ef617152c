package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/timeline"
)

var _ pflag.Value = (*timeline.Scale)(nil)

func newTimelineCmd(app *App) *cobra.Command {
	var (
		projectRef  string
		file        string
		nowStr      string
		zoom        float64
		collapse    []string
		asJSON      bool
		interactive bool
	)
	scale := timeline.ScaleWeeks

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Draw a Gantt chart of a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(app, nowStr)
			if err != nil {
				return err
			}
			in, _, err := loadSchedule(cmd, app, projectRef, file)
			if err != nil {
				return err
			}

			expanded := timeline.ExpandAll(in.Tasks)
			for _, id := range collapse {
				delete(expanded, id)
			}
			opts := timeline.Options{Scale: scale, Zoom: zoom, Expanded: expanded, Now: now}

			if interactive {
				if !app.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				m := newGanttModel(in.Tasks, opts)
				_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
				return err
			}

			chart, err := timeline.Build(in.Tasks, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chart)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderGantt(chart, formatter.GanttOptions{
				Selected:  -1,
				Collapsed: collapsedSet(in.Tasks, expanded),
			}))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&projectRef, "project", "p", "", "Stored project ID, prefix or name")
	f.StringVarP(&file, "file", "f", "", "JSON schedule file ({tasks, budget} or a task array)")
	f.StringVar(&nowStr, "now", "", "Reference date when no task is dated (YYYY-MM-DD)")
	f.Var(&scale, "scale", "Time scale: days, weeks, months or quarters")
	f.Float64Var(&zoom, "zoom", 1, "Zoom factor between 0.5 and 2")
	f.StringSliceVar(&collapse, "collapse", nil, "Project task ids to collapse")
	f.BoolVar(&asJSON, "json", false, "Print the chart layout as JSON")
	f.BoolVarP(&interactive, "interactive", "i", false, "Open the interactive chart")

	return cmd
}

// collapsedSet lists project rows absent from expanded.
func collapsedSet(tasks []domain.Task, expanded map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, t := range tasks {
		if t.IsProject() && !expanded[t.ID] {
			out[t.ID] = true
		}
	}
	return out
}
