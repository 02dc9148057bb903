package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cache"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, a.store, a.insights, apphttp.Options{
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return err
	}
	srv.MaxHeaderBytes = 1 << 16

	janitor := cache.NewJanitor(logger, a.insights.Results())
	go janitor.Run(ctx, 10*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting spendwise server", "port", cfg.Port, "backend", cfg.DataBackend,
			"insights_provider", cfg.InsightsProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully", "write_failures", a.store.WriteFailures())
	return nil
}
