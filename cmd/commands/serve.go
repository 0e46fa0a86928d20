package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/endpoints"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/transport"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the crawl API and prometheus metrics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		// background runs stop with the process
		a.runService.BaseContext = ctx

		endpts := endpoints.Endpoints{
			CrawlEndpoint: endpoints.MakeCrawlEndpoint(a.runService),
		}
		router := transport.MakeHTTPRouter(&cfg, endpts, a.registry)
		server := &http.Server{
			Handler:      router,
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			WriteTimeout: cfg.HTTP.Timeout,
			ReadTimeout:  cfg.HTTP.Timeout,
		}

		slog.InfoContext(ctx, "running HTTP server...", slog.Int("port", cfg.HTTP.Port))

		serverErr := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("failed to start HTTP server: %w", err)
			}
		case <-ctx.Done():
			slog.InfoContext(ctx, "received OS signal. Exiting...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "failed to shutdown HTTP server", slog.String("error", err.Error()))
		}

		a.runService.Wait()
		slog.InfoContext(ctx, "HTTP server shutdown gracefully")

		return nil
	},
}
