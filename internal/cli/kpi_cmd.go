package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/export"
	"github.com/alexanderramin/planpilot/internal/kpi"
	"github.com/alexanderramin/planpilot/internal/service"
)

func newKPICmd(app *App) *cobra.Command {
	var (
		projectRef string
		file       string
		nowStr     string
		actualCost float64
		format     string
		scurve     bool
		step       int
	)

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Compute earned-value KPIs for a schedule",
		Long: "Compute planned value, earned value, variances and performance indexes\n" +
			"for a stored project (--project) or a JSON schedule file (--file, - for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(app, nowStr)
			if err != nil {
				return err
			}

			in, p, err := loadSchedule(cmd, app, projectRef, file)
			if err != nil {
				return err
			}

			var res service.KPIResult
			if p != nil && !cmd.Flags().Changed("actual-cost") && app.KPIs != nil {
				r, err := app.KPIs.Snapshot(commandContext(cmd), app.userID(), p.ID, now)
				if err != nil {
					return err
				}
				res = *r
			} else {
				kin := kpi.Input{Tasks: in.Tasks, Budget: in.Budget, Now: now}
				if cmd.Flags().Changed("actual-cost") {
					kin.ActualCost = &actualCost
				}
				snap := kpi.Calculate(kin)
				res = service.KPIResult{Snapshot: snap, Health: kpi.Health(snap), Signals: kpi.Signals(snap), AsOf: now}
			}

			out := cmd.OutOrStdout()
			if scurve {
				points := kpi.SCurve(in.Tasks, in.Budget, step)
				if format == "json" {
					return writeJSON(out, points)
				}
				fmt.Fprint(out, formatter.FormatSCurve(&domain.SCurveReport{Points: points}))
				return nil
			}

			switch format {
			case "json":
				return writeJSON(out, res)
			case "csv":
				return export.WriteKPICSV(out, res.Snapshot, res.Health)
			case "text":
				currency := ""
				if p != nil {
					currency = p.Criteria.Currency
				}
				fmt.Fprint(out, formatter.FormatKPIs(res.Snapshot, res.Health, res.Signals, res.AsOf, currency))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or csv)", format)
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&projectRef, "project", "p", "", "Stored project ID, prefix or name")
	f.StringVarP(&file, "file", "f", "", "JSON schedule file ({tasks, budget} or a task array)")
	f.StringVar(&nowStr, "now", "", "Reference date (YYYY-MM-DD, default today)")
	f.Float64Var(&actualCost, "actual-cost", 0, "Measured actual cost (default: estimated from earned value)")
	f.StringVar(&format, "format", "text", "Output format: text, json or csv")
	f.BoolVar(&scurve, "scurve", false, "Print the planned S-curve instead")
	f.IntVar(&step, "step", kpi.DefaultSCurveStep, "S-curve sampling step in days")

	return cmd
}

// parseNow is shared by commands taking a --now flag.
func parseNow(app *App, s string) (time.Time, error) {
	if s == "" {
		return app.now(), nil
	}
	t, err := datemath.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return t, nil
}
