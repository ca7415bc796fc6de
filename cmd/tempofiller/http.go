package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tempofiller/internal/api/http"
	"github.com/spec-kit/tempofiller/internal/api/http/handlers"
	"github.com/spec-kit/tempofiller/internal/auth"
	"github.com/spec-kit/tempofiller/internal/mcpserver"
)

func newHTTPCmd() *cobra.Command {
	var requestTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve health probes, metrics and the JWT protected tool API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.logger

			server := fiber.New(fiber.Config{
				AppName:               app.cfg.App.Name,
				DisableStartupMessage: true,
			})
			httptransport.RegisterMiddlewares(server, logger, app.metrics, requestTimeout)

			routes := httptransport.RouteConfig{
				Health: handlers.NewHealthHandler(app.cfg.App.Name, app.cfg.App.Version, map[string]handlers.Pinger{
					"postgres": app.postgres,
					"redis":    app.redis,
				}),
				Metrics: handlers.NewMetricsHandler(app.metrics),
				Tools:   handlers.NewToolsHandler(mcpserver.NewTools(app.worklogs, app.cfg.Tempo.MaxBulkEntries), logger),
			}
			if app.cfg.Auth.JWTSecret != "" {
				tokens := auth.NewTokenManager(app.cfg.Auth.JWTSecret, app.cfg.Auth.AccessTokenTTLMinutes)
				routes.AuthMiddleware = auth.NewAuthMiddleware(tokens)
			} else {
				logger.Warn("AUTH_JWT_SECRET not set; tool API disabled")
			}
			httptransport.RegisterRoutes(server, routes)

			go func() {
				logger.Info("http listening", zap.String("addr", app.cfg.App.Addr()))
				if err := server.Listen(app.cfg.App.Addr()); err != nil {
					logger.Fatal("fiber listen", zap.Error(err))
				}
			}()

			waitForShutdown(logger)
			return server.Shutdown()
		},
	}

	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 2*time.Minute, "Per request deadline passed to Tempo calls.")
	return cmd
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
