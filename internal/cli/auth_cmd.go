package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/backend"
	"github.com/alexanderramin/planpilot/internal/cli/formatter"
)

// LoadSession restores a stored backend session. A missing file yields
// nil without error.
func LoadSession(path string) (*backend.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var s backend.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &s, nil
}

func saveSession(path string, s *backend.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the hosted backend to sync projects and settings",
	}

	cmd.AddCommand(
		newAuthSignUpCmd(app),
		newAuthLoginCmd(app),
		newAuthLogoutCmd(app),
		newAuthWhoAmICmd(app),
	)

	return cmd
}

type credentials struct {
	Email    string
	Password string
	Confirm  string
}

// collect fills missing fields from a form on a terminal, or from stdin
// lines otherwise.
func (c *credentials) collect(cmd *cobra.Command, app *App, confirm bool) error {
	if c.Email != "" && c.Password != "" && (!confirm || c.Confirm != "") {
		return nil
	}

	if app.interactive() {
		fields := []huh.Field{
			huh.NewInput().Title("Email").Value(&c.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password),
		}
		if confirm {
			fields = append(fields, huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&c.Confirm))
		}
		return huh.NewForm(huh.NewGroup(fields...)).WithTheme(planpilotHuhTheme()).WithShowHelp(false).Run()
	}

	in, errOut := cmd.InOrStdin(), cmd.ErrOrStderr()
	var err error
	if c.Email == "" {
		if c.Email, err = promptLine(in, errOut, "Email: "); err != nil {
			return err
		}
	}
	if c.Password == "" {
		if c.Password, err = promptLine(in, errOut, "Password: "); err != nil {
			return err
		}
	}
	if confirm && c.Confirm == "" {
		if c.Confirm, err = promptLine(in, errOut, "Confirm password: "); err != nil {
			return err
		}
	}
	return nil
}

func requireBackend(app *App) error {
	if app.Backend == nil || !app.Backend.Enabled() {
		return fmt.Errorf("no backend configured (set backend.url and backend.anon_key, or SUPABASE_URL and SUPABASE_ANON_KEY)")
	}
	return nil
}

func newAuthSignUpCmd(app *App) *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackend(app); err != nil {
				return err
			}
			if err := c.collect(cmd, app, true); err != nil {
				return err
			}

			s, err := app.Backend.SignUp(commandContext(cmd), c.Email, c.Password, c.Confirm)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s == nil {
				fmt.Fprintln(out, "Account created. Confirm your email, then run: planpilot auth login")
				return nil
			}
			if err := saveSession(app.Config.SessionFile(), s); err != nil {
				return err
			}
			fmt.Fprintf(out, "Signed up and logged in as %s\n", s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&c.Confirm, "confirm", "", "Password confirmation")

	return cmd
}

func newAuthLoginCmd(app *App) *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackend(app); err != nil {
				return err
			}
			if err := c.collect(cmd, app, false); err != nil {
				return err
			}

			s, err := app.Backend.SignIn(commandContext(cmd), c.Email, c.Password)
			if err != nil {
				return err
			}
			if err := saveSession(app.Config.SessionFile(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.Password, "password", "", "Account password")

	return cmd
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackend(app); err != nil {
				return err
			}
			if app.Backend.Session() != nil {
				if err := app.Backend.SignOut(commandContext(cmd)); err != nil && !backend.IsAuthError(err) {
					return err
				}
			}
			if err := os.Remove(app.Config.SessionFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if app.Backend != nil {
				if u, err := app.Backend.CurrentUser(); err == nil {
					fmt.Fprintf(out, "%s %s\n", u.Email, formatter.Dim("("+u.ID+")"))
					return nil
				}
			}
			fmt.Fprintf(out, "Not signed in; local data belongs to %q.\n", app.userID())
			return nil
		},
	}
}
