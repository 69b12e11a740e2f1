package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/clinic-secretary/internal/api/router"
	"github.com/wolfman30/clinic-secretary/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-secretary/internal/config"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-secretary API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic", cfg.ClinicName,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Warn("redis disabled; sessions and clinic settings are kept in memory")
	} else {
		defer redisClient.Close()
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Warn("postgres disabled; bookings are kept in memory")
	} else {
		defer pool.Close()
	}

	sqlDB, err := bootstrap.OpenSQLDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("dialog log disabled", "error", err)
	} else {
		defer sqlDB.Close()
	}

	metricsHandler, metrics := setupMetrics()
	routerCfg := buildRouterConfig(ctx, cfg, logger, infra{
		redis:   redisClient,
		pool:    pool,
		sqlDB:   sqlDB,
		metrics: metrics,
	})
	routerCfg.MetricsHandler = metricsHandler
	r := router.New(ctx, routerCfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	if err := serve(ctx, srv, logger); err != nil {
		logger.Error("api server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("api server stopped")
}

// serve runs srv until SIGINT/SIGTERM and then drains open connections.
func serve(ctx context.Context, srv *http.Server, logger *logging.Logger) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api: listen: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("draining connections")
	drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}
