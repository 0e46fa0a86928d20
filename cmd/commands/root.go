package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/config"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "flight-price-crawler",
	Short:         "flight-price-crawler collects flight offers for a list of routes on one departure date.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", ".env", "The .env file to read configuration from.")
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "command failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	return 0
}

func loadConfig() (config.Config, error) {
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		return config.Config{}, err
	}

	logger.InitStructuredLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Debug("config loaded successfully", slog.String("provider", cfg.Provider.Name),
		slog.Bool("redis", cfg.Redis.Enabled()))

	return cfg, nil
}
