package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/weatheria/weather-backend/internal/server"
	"github.com/weatheria/weather-backend/internal/service"
	"go.uber.org/zap"
)

func newServerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather HTTP server",
		Long:  `Start the HTTP server exposing /api/weather, health probes and metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), a)
		},
	}
}

func runServer(ctx context.Context, a *app) error {
	cfg := a.cfg
	log := a.log.Logger

	log.Info("Starting weather server",
		zap.String("config_path", a.configPath),
		zap.String("environment", cfg.Environment),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	provider := service.NewOpenWeatherMapServiceWithConfig(cfg.Provider, log, a.tele)
	srv := server.NewServer(cfg, provider, log, a.tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
		log.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
