package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/config"
	"github.com/ErlanBelekov/rich-pastebin/internal/email"
	"github.com/ErlanBelekov/rich-pastebin/internal/health"
	"github.com/ErlanBelekov/rich-pastebin/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/rich-pastebin/internal/log"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/sweeper"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	profileRepo := postgres.NewProfileRepository(pool)
	notifications := usecase.NewNotificationUsecase(
		postgres.NewNotificationRepository(pool),
		postgres.NewUserRepository(pool),
		profileRepo,
		email.NewLogSender(logger),
		cfg.ClientURL,
		logger,
	)

	retention := time.Duration(cfg.Sweep.NotificationRetention) * 24 * time.Hour
	sw, err := sweeper.New(logger,
		sweeper.SubscriptionLabels(cfg.Sweep.SubscriptionCron, profileRepo),
		sweeper.NotificationRetention(cfg.Sweep.NotificationCron, retention, notifications),
	)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	// blocks until the signal context is cancelled and running jobs finish
	sw.Start(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
