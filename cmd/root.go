package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/weatheria/weather-backend/internal/config"
	"github.com/weatheria/weather-backend/pkg/logger"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap"
)

const defaultEnvFile = ".env"

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	envFile    string

	cfg  *config.Config
	log  *logger.Logger
	tele *telemetry.Telemetry
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Current weather lookup service",
		Long: `A small HTTP service that looks up the current weather for a city on
OpenWeatherMap and returns a normalized JSON result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the configuration")

	cmd.AddCommand(newServerCmd(a))
	cmd.AddCommand(newFetchCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd().ExecuteContext(ctx)
}

func (a *app) initialize(cmd *cobra.Command) error {
	// 1. Load the env file. Only an explicitly requested file must exist.
	if err := godotenv.Load(a.envFile); err != nil {
		if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", a.envFile, err)
		}
	}

	// 2. Load and validate config
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// 3. Initialize logger
	a.log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 4. Tracing failures are not fatal
	a.tele, err = telemetry.New(cmd.Context(), cfg.Telemetry, cfg.Version)
	if err != nil {
		a.log.Warn("Failed to initialize telemetry", zap.Error(err))
		a.tele = &telemetry.Telemetry{}
	}

	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.tele != nil {
		if err := a.tele.Shutdown(context.WithoutCancel(ctx)); err != nil && a.log != nil {
			a.log.Warn("Failed to shutdown telemetry", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}
