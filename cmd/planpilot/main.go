package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/planpilot/internal/backend"
	"github.com/alexanderramin/planpilot/internal/cli"
	"github.com/alexanderramin/planpilot/internal/config"
	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config file: $PLANPILOT_CONFIG, else ~/.planpilot/config.yaml
	cfg, err := config.Load(os.Getenv("PLANPILOT_CONFIG"), os.Getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)

	// Open database
	database, dialect, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewProjectRepo(database, dialect)
	settingsRepo := repository.NewSettingsRepo(database, dialect)
	historyRepo := repository.NewHistoryRepo(database, db.NewUnitOfWork(database), dialect)

	// Wire the AI provider boundary
	llmCfg := cfg.LLMSettings(os.Getenv)
	var llmObserver llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		llmObserver = llm.NewLogObserver(os.Stderr)
	}
	factory := service.NewClientFactory(llmCfg, http.DefaultClient, llmObserver)

	// Wire services
	observer := service.NewSlogUseCaseObserver(logger)
	historySvc := service.NewHistoryService(historyRepo)

	// Restore the hosted backend session, if any
	backendClient := backend.NewClient(cfg.Backend, nil)
	session, err := cli.LoadSession(cfg.SessionFile())
	if err != nil {
		logger.Warn("session_restore_failed", "error", err)
	}
	backendClient.SetSession(session)

	app := &cli.App{
		Projects:   service.NewProjectService(projectRepo, observer),
		Generation: service.NewGenerationService(projectRepo, settingsRepo, historySvc, factory, observer),
		Assistant:  service.NewAssistantService(settingsRepo, historySvc, factory, observer),
		KPIs:       service.NewKPIService(projectRepo),
		Settings:   service.NewSettingsService(settingsRepo, observer),
		History:    historySvc,

		Backend: backendClient,
		Config:  cfg,
		LLM:     llmCfg,
		Logger:  logger,

		HTTPClient: http.DefaultClient,
		Getenv:     os.Getenv,
	}

	// Detect interactive terminal for forms, spinners and the chat prompt.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
