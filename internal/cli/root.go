package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/backend"
	"github.com/alexanderramin/planpilot/internal/config"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/service"
)

// App holds references to all services and collaborators used by CLI
// commands.
type App struct {
	Projects   service.ProjectService
	Generation service.GenerationService
	Assistant  service.AssistantService
	KPIs       service.KPIService
	Settings   service.SettingsService
	History    service.HistoryService

	Backend *backend.Client
	Config  *config.Config
	LLM     llm.Config
	Logger  *slog.Logger

	HTTPClient    *http.Client
	Getenv        func(string) string
	Now           func() time.Time
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "planpilot" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planpilot",
		Short:         "AI-assisted project planning: schedules, earned value and Gantt charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newKPICmd(app),
		newTimelineCmd(app),
		newAudioCmd(app),
		newVideoCmd(app),
		newChatCmd(app),
		newTranslateCmd(app),
		newSettingsCmd(app),
		newModelsCmd(app),
		newHistoryCmd(app),
		newAuthCmd(app),
		newServeCmd(app),
		newCalendarCmd(app),
	)

	return root
}

// userID is the signed-in backend user when a live session exists,
// otherwise the configured local owner.
func (a *App) userID() string {
	if a.Backend != nil {
		if u, err := a.Backend.CurrentUser(); err == nil {
			return u.ID
		}
	}
	if a.Config != nil && a.Config.UserID != "" {
		return a.Config.UserID
	}
	return config.DefaultUserID
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) getenv(key string) string {
	if a.Getenv != nil {
		return a.Getenv(key)
	}
	return os.Getenv(key)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
