package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/backend"
	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the AI provider settings",
	}

	cmd.AddCommand(
		newSettingsShowCmd(app),
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current settings (API key masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			var (
				st  *domain.UserSettings
				err error
			)
			if remote {
				if app.Backend == nil || !app.Backend.Enabled() {
					return fmt.Errorf("no backend configured")
				}
				st, err = app.Backend.GetSettings(ctx)
				if err == nil && st == nil {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No settings stored remotely."))
					return nil
				}
			} else {
				st, err = app.Settings.Get(ctx, app.userID())
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(st))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Read the settings stored in the hosted backend")

	return cmd
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var (
		provider, model, language, apiKey string
		keyFromStdin, clearKey            bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change provider, model, language or API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, err := app.Settings.Get(ctx, app.userID())
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("provider") {
				if st.Provider != provider && !f.Changed("model") {
					st.Model = ""
				}
				st.Provider = provider
			}
			if f.Changed("model") {
				st.Model = model
			}
			if f.Changed("language") {
				st.Language = language
			}
			switch {
			case clearKey:
				st.APIKey = ""
			case keyFromStdin:
				key, err := promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "API key: ")
				if err != nil {
					return fmt.Errorf("reading API key: %w", err)
				}
				st.APIKey = key
			case f.Changed("api-key"):
				st.APIKey = apiKey
			}

			if err := app.Settings.Save(ctx, st); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.Backend != nil && app.Backend.Enabled() {
				err := app.Backend.SaveSettings(ctx, st)
				switch {
				case backend.IsAuthError(err):
					fmt.Fprintln(out, formatter.Dim("Not signed in; settings saved locally only."))
				case err != nil:
					return fmt.Errorf("saved locally, but syncing failed: %w", err)
				}
			}
			fmt.Fprint(out, formatter.FormatSettings(st))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&provider, "provider", "", "AI provider: "+providerNames())
	f.StringVar(&model, "model", "", "Model name (empty for the provider default)")
	f.StringVar(&language, "language", "", "Language for generated prose")
	f.StringVar(&apiKey, "api-key", "", "Provider API key")
	f.BoolVar(&keyFromStdin, "api-key-stdin", false, "Read the API key from stdin")
	f.BoolVar(&clearKey, "clear-api-key", false, "Remove the stored key and use the environment")

	return cmd
}

func providerNames() string {
	names := make([]string, len(llm.Providers))
	for i, p := range llm.Providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func newModelsCmd(app *App) *cobra.Command {
	var providerFlag string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available from the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, err := app.Settings.Get(ctx, app.userID())
			if err != nil {
				return err
			}
			if providerFlag != "" {
				st.Provider = providerFlag
				st.Model = ""
			}

			resolved, err := llm.Resolve(st, app.getenv)
			if errors.Is(err, llm.ErrMissingAPIKey) {
				// Without a key ListModels falls back to the built-in list.
				p, perr := llm.ParseProvider(domain.CoalesceStr(st.Provider, app.getenv("PLANPILOT_AI_PROVIDER"), string(llm.ProviderGoogle)))
				if perr != nil {
					return perr
				}
				resolved = llm.ResolvedAIConfig{Provider: p, Model: domain.CoalesceStr(st.Model, llm.DefaultModel(p))}
			} else if err != nil {
				return err
			}

			list := llm.ListModels(ctx, resolved, app.LLM.Endpoints, app.HTTPClient)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatModels(list, resolved.Model))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerFlag, "provider", "", "List another provider's models")

	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		feature   string
		clearList bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the remembered chat, translation and generation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f := domain.HistoryFeature(feature)
			if !domain.ValidHistoryFeatures[f] {
				return fmt.Errorf("unknown feature %q (want chat, translator or generation)", feature)
			}

			if clearList {
				if err := app.History.Clear(ctx, app.userID(), f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s history.\n", f)
				return nil
			}

			entries, err := app.History.List(ctx, app.userID(), f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&feature, "feature", string(domain.FeatureChat), "History list: chat, translator or generation")
	cmd.Flags().BoolVar(&clearList, "clear", false, "Delete the list")

	return cmd
}
