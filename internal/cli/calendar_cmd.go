package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/calendar"
	"github.com/alexanderramin/planpilot/internal/cli/formatter"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export schedules to Google Calendar",
	}

	cmd.AddCommand(
		newCalendarAuthCmd(app),
		newCalendarExportCmd(app),
	)

	return cmd
}

func newCalendarAuthCmd(app *App) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize calendar access and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Calendar
			oauthCfg, err := calendar.LoadOAuthConfig(cfg.CredentialsFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if code == "" {
				fmt.Fprintf(out, "Open this URL and authorize access:\n\n  %s\n\n", calendar.AuthURL(oauthCfg))
				if code, err = promptLine(cmd.InOrStdin(), out, "Authorization code: "); err != nil {
					return fmt.Errorf("reading authorization code: %w", err)
				}
			}
			if _, err := calendar.Exchange(commandContext(cmd), oauthCfg, code, cfg.TokenFile); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved to %s\n", cfg.TokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted when empty)")

	return cmd
}

func newCalendarExportCmd(app *App) *cobra.Command {
	var calendarID string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Create one all-day event per scheduled task of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			p, err := findProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			if len(p.Schedule) == 0 {
				return fmt.Errorf("project has no schedule; run: planpilot project generate %s --stage schedule", p.ID)
			}

			cfg := app.Config.Calendar
			oauthCfg, err := calendar.LoadOAuthConfig(cfg.CredentialsFile)
			if err != nil {
				return err
			}
			ts, err := calendar.TokenSource(ctx, oauthCfg, cfg.TokenFile)
			if err != nil {
				return fmt.Errorf("%w (run: planpilot calendar auth)", err)
			}
			exp, err := calendar.NewTokenExporter(ctx, ts)
			if err != nil {
				return err
			}

			if calendarID == "" {
				calendarID = cfg.CalendarID
			}
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Creating events...")
			}
			res, err := exp.Export(ctx, calendarID, p.Schedule)
			stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d event(s), skipped %d row(s).\n", res.Created, res.Skipped)
			return err
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID (default from config, primary)")

	return cmd
}
