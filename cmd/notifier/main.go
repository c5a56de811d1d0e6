// notifier turns social events from the broker into notification rows and
// follow emails. The API delivers events in-process when AMQP_URL is empty,
// so this binary is only deployed alongside a broker.
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
	"github.com/ErlanBelekov/rich-pastebin/internal/events"
	"github.com/ErlanBelekov/rich-pastebin/internal/health"
	"github.com/ErlanBelekov/rich-pastebin/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/rich-pastebin/internal/log"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AMQP.URL == "" {
		log.Fatal("AMQP_URL is not set")
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	conn, err := events.Dial(cfg.AMQP.URL, 10, 3*time.Second)
	if err != nil {
		stop()
		log.Fatalf("amqp: %v", err)
	}
	defer conn.Close()

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	notifications := usecase.NewNotificationUsecase(
		postgres.NewNotificationRepository(pool),
		postgres.NewUserRepository(pool),
		postgres.NewProfileRepository(pool),
		email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger),
		cfg.ClientURL,
		logger,
	)
	consumer := events.NewConsumer(conn, cfg.AMQP.Exchange, cfg.AMQP.Queue, notifications.HandleEvent, logger)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("consumer", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
