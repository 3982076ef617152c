package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API (KPIs, timelines, WAV encoding, projects)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			logger := app.logger()
			if cfg.JWTSecret == "" {
				logger.Warn("jwt_secret is empty; project routes are disabled")
			}

			svc := httpapi.Services{}
			if cfg.JWTSecret != "" {
				svc = httpapi.Services{Projects: app.Projects, Generation: app.Generation, KPIs: app.KPIs}
			}
			api := httpapi.NewServer(svc, httpapi.Options{
				JWTSecret:      []byte(cfg.JWTSecret),
				AllowedOrigins: cfg.AllowedOrigins,
				Logger:         logger,
				Now:            app.Now,
			})

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http_listen", "addr", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serving %s: %w", cfg.Addr, err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("http_shutdown")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")

	return cmd
}
