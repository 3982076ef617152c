package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/export"
	"github.com/alexanderramin/planpilot/internal/importer"
)

// findProject resolves a full id, a unique id prefix or an exact
// case-insensitive name to one of the user's projects.
func findProject(ctx context.Context, app *App, input string) (*domain.Project, error) {
	if input == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	projects, err := app.Projects.List(ctx, app.userID())
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.ID == input {
			return p, nil
		}
	}

	var matches []*domain.Project
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		for _, p := range projects {
			if strings.EqualFold(p.Name, input) {
				matches = append(matches, p)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("project reference %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects and generate their planning stages",
	}

	cmd.AddCommand(
		newProjectNewCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectDeleteCmd(app),
		newProjectGenerateCmd(app),
		newProjectExportCmd(app),
		newProjectImportCmd(app),
		newProjectSyncCmd(app),
	)

	return cmd
}

func newProjectNewCmd(app *App) *cobra.Command {
	var (
		in   projectFormValues
		form bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project from an objective and optional criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form || (in.Objective == "" && app.interactive()) {
				if err := runProjectForm(&in); err != nil {
					return err
				}
			}
			if strings.TrimSpace(in.Objective) == "" {
				return fmt.Errorf("an objective is required (--objective or run interactively)")
			}

			p := in.project(app.userID())
			if err := app.Projects.Create(commandContext(cmd), p); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.DisplayName(), p.ID[:8])
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Project name")
	f.StringVar(&in.Objective, "objective", "", "What the project should achieve")
	f.StringVar(&in.Location, "location", "", "Where the project takes place")
	f.StringVar(&in.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&in.EndDate, "end", "", "End date (YYYY-MM-DD)")
	f.StringVar(&in.Budget, "budget", "", "Budget amount")
	f.StringVar(&in.Currency, "currency", "", "Budget currency code")
	f.StringVar(&in.BudgetType, "budget-type", "", "Budget type (fixed, flexible, ...)")
	f.StringVar(&in.Duration, "duration", "", "Expected duration (e.g. 6 months)")
	f.BoolVar(&form, "form", false, "Fill the fields in an interactive form")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(commandContext(cmd), app.userID())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), projects)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print projects as JSON")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	var stageStr string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show project details, or one generated stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := findProject(commandContext(cmd), app, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if stageStr == "" {
				fmt.Fprint(out, formatter.FormatProjectDetail(p))
				return nil
			}
			if stageStr == "all" {
				for _, s := range domain.Stages {
					if p.HasStage(s) {
						fmt.Fprintln(out, formatter.FormatStage(p, s))
					}
				}
				return nil
			}
			stage, ok := domain.ParseStage(stageStr)
			if !ok {
				return fmt.Errorf("unknown stage %q (want one of %s)", stageStr, stageNames())
			}
			fmt.Fprint(out, formatter.FormatStage(p, stage))
			return nil
		},
	}

	cmd.Flags().StringVar(&stageStr, "stage", "", "Stage to print, or \"all\"")

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			p, err := findProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !force {
				msg := fmt.Sprintf("Delete project %q? [y/N] ", p.DisplayName())
				if !promptYesNoIO(cmd.InOrStdin(), out, msg) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if err := app.Projects.Delete(ctx, app.userID(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted project %s\n", p.DisplayName())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

func newProjectGenerateCmd(app *App) *cobra.Command {
	var (
		stageStr string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "generate ID",
		Short: "Generate a planning stage with the configured AI provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Generation == nil {
				return fmt.Errorf("generation is not configured")
			}
			ctx := commandContext(cmd)
			p, err := findProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			stages, err := stagesToRun(p, stageStr, all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, stage := range stages {
				stop := func() {}
				if app.interactive() {
					stop = formatter.StartSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Generating %s...", stage))
				}
				res, err := app.Generation.Run(ctx, app.userID(), p.ID, stage)
				stop()
				if err != nil {
					return fmt.Errorf("generating %s: %w", stage, err)
				}
				p = res.Project
				fmt.Fprintf(out, "%s %s %s\n", formatter.StyleGreen.Render("✔"), stage,
					formatter.Dim(fmt.Sprintf("(%s/%s)", res.Provider, res.Model)))
				if !all {
					fmt.Fprint(out, "\n"+formatter.FormatStage(p, stage))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stageStr, "stage", "", "Stage to generate (default: the next missing one)")
	cmd.Flags().BoolVar(&all, "all", false, "Generate every missing stage in order")

	return cmd
}

// stagesToRun picks the explicit stage, every missing stage, or the first
// missing one.
func stagesToRun(p *domain.Project, stageStr string, all bool) ([]domain.Stage, error) {
	if stageStr != "" {
		stage, ok := domain.ParseStage(stageStr)
		if !ok {
			return nil, fmt.Errorf("unknown stage %q (want one of %s)", stageStr, stageNames())
		}
		return []domain.Stage{stage}, nil
	}
	var missing []domain.Stage
	for _, s := range domain.Stages {
		if !p.HasStage(s) {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return nil, fmt.Errorf("every stage is already generated; pass --stage to regenerate one")
	}
	if all {
		return missing, nil
	}
	return missing[:1], nil
}

func stageNames() string {
	names := make([]string, len(domain.Stages))
	for i, s := range domain.Stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newProjectExportCmd(app *App) *cobra.Command {
	var (
		what   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a project's schedule, risks or KPIs as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			p, err := findProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			switch what {
			case "schedule":
				if len(p.Schedule) == 0 {
					return fmt.Errorf("project has no schedule")
				}
				return export.WriteScheduleCSV(w, p.Schedule)
			case "risks":
				if p.Risk == nil {
					return fmt.Errorf("project has no risk register")
				}
				return export.WriteRiskCSV(w, p.Risk)
			case "kpis":
				res, err := app.KPIs.Snapshot(ctx, app.userID(), p.ID, app.now())
				if err != nil {
					return err
				}
				return export.WriteKPICSV(w, res.Snapshot, res.Health)
			default:
				return fmt.Errorf("unknown export %q (want schedule, risks or kpis)", what)
			}
		},
	}

	cmd.Flags().StringVar(&what, "what", "schedule", "What to export: schedule, risks or kpis")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project, schedule and budget from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			schema, err := importer.ParseImportSchema(data)
			if err != nil {
				return err
			}

			if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
				errOut := cmd.ErrOrStderr()
				for _, e := range errs {
					fmt.Fprintf(errOut, "  %s %v\n", formatter.StyleRed.Render("✗"), e)
				}
				return fmt.Errorf("import file has %d error(s)", len(errs))
			}

			p, err := importer.Convert(schema, app.userID())
			if err != nil {
				return err
			}
			if err := app.Projects.Create(commandContext(cmd), p); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s [%s] with %d task(s)\n",
				p.DisplayName(), p.ID[:8], len(p.Schedule))
			return nil
		},
	}
}

// newProjectSyncCmd pushes local projects to the hosted backend and pulls
// remote ones that are missing locally.
func newProjectSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize projects with the hosted backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Backend == nil || !app.Backend.Enabled() {
				return fmt.Errorf("no backend configured (set backend.url and backend.anon_key)")
			}
			ctx := commandContext(cmd)
			userID := app.userID()

			local, err := app.Projects.List(ctx, userID)
			if err != nil {
				return err
			}
			remote, err := app.Backend.ListProjects(ctx)
			if err != nil {
				return err
			}

			known := make(map[string]bool, len(local))
			for _, p := range local {
				known[p.ID] = true
			}

			var pushed, pulled int
			for _, p := range local {
				if err := app.Backend.UpsertProject(ctx, p); err != nil {
					return fmt.Errorf("pushing %s: %w", p.DisplayName(), err)
				}
				pushed++
			}
			for _, p := range remote {
				if known[p.ID] {
					continue
				}
				p.UserID = userID
				if err := app.Projects.Create(ctx, p); err != nil {
					return fmt.Errorf("pulling %s: %w", p.DisplayName(), err)
				}
				pulled++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d, pulled %d project(s).\n", pushed, pulled)
			return nil
		},
	}
}
