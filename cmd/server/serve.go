package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/platewise/backend/config"
	httpDelivery "github.com/platewise/backend/internal/delivery/http"
	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/cache"
	"github.com/platewise/backend/internal/infrastructure/usda"
	"github.com/platewise/backend/internal/infrastructure/vision"
	"github.com/platewise/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default command)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := zap.L()

	handler, closeDeps := buildHandler(cfg, logger)
	defer closeDeps()

	router := httpDelivery.SetupRouter(cfg, handler, logger)

	port := servePort
	if port == "" {
		port = cfg.Server.Port
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return nil
	}
}

// buildHandler wires the record source, optional response cache, optional
// vision client and services. The returned func releases background workers.
func buildHandler(cfg *config.Config, logger *zap.Logger) (*httpDelivery.Handler, func()) {
	client := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL,
		usda.WithTimeout(cfg.USDA.Timeout),
		usda.WithMaxRetries(cfg.USDA.MaxRetries),
		usda.WithRequestsPerHour(cfg.RateLimit.USDA),
		usda.WithLogger(logger.Named("usda")),
	)
	if cfg.Log.Level == "debug" && cfg.Server.Environment == "development" {
		client.SetDebug(true)
		logger.Debug("USDA client debug mode enabled")
	}

	var source domain.RecordSource = client
	closeDeps := func() {}
	if cfg.USDA.CacheTTL > 0 {
		memoryCache := cache.NewMemoryCache(0)
		source = cache.NewCachedSource(client, memoryCache, cfg.USDA.CacheTTL, logger.Named("cache"))
		closeDeps = memoryCache.Close
		logger.Info("response cache enabled", zap.Duration("ttl", cfg.USDA.CacheTTL))
	}

	foods := usecase.NewFoodService(source, usecase.FoodServiceConfig{PageSize: cfg.USDA.PageSize}, logger.Named("foods"))

	// Leave the scanner nil rather than a typed nil so the handler reports
	// not-configured.
	var scanner httpDelivery.MealScanner
	if cfg.Vision.APIKey != "" {
		extractor := vision.NewClient(cfg.Vision.APIKey, vision.Config{
			Model:     cfg.Vision.Model,
			MaxTokens: cfg.Vision.MaxTokens,
		}, logger.Named("vision"))
		scanner = usecase.NewScanService(extractor, logger.Named("scan"))
	} else {
		logger.Warn("vision API key not set, meal scanning disabled")
	}

	return httpDelivery.NewHandler(foods, scanner, logger), closeDeps
}
