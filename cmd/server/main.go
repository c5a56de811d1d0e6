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
	"github.com/ErlanBelekov/rich-pastebin/internal/payment"
	"github.com/ErlanBelekov/rich-pastebin/internal/quota"
	"github.com/ErlanBelekov/rich-pastebin/internal/ratelimit"
	"github.com/ErlanBelekov/rich-pastebin/internal/storage"
	"github.com/ErlanBelekov/rich-pastebin/internal/tracing"
	httptransport "github.com/ErlanBelekov/rich-pastebin/internal/transport/http"
	"github.com/ErlanBelekov/rich-pastebin/internal/transport/http/handler"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/ErlanBelekov/rich-pastebin/internal/viewcounter"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	shutdownTracing := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.OTel.Enabled,
		ServiceName: cfg.OTel.ServiceName,
		Protocol:    cfg.OTel.Protocol,
		SampleRatio: cfg.OTel.SampleRatio,
	}, logger)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	pasteRepo := postgres.NewPasteRepository(pool)
	folderRepo := postgres.NewFolderRepository(pool)
	draftRepo := postgres.NewDraftRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	likeRepo := postgres.NewLikeRepository(pool)
	favoriteRepo := postgres.NewFavoriteRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	// Magic-link lockout
	lockoutWindow := time.Duration(cfg.LoginLockoutMinute) * time.Minute
	var lockout ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checker.Add("redis", health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
		lockout = ratelimit.NewRedisLimiter(rdb, cfg.LoginMaxAttempts, lockoutWindow, logger)
		logger.Info("login lockout backed by redis", "addr", cfg.Redis.Addr)
	} else {
		lockout = ratelimit.NewMemoryLimiter(cfg.LoginMaxAttempts, lockoutWindow)
		logger.Info("login lockout kept in memory")
	}

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Notifications: published to the broker for cmd/notifier, or handled in-process.
	notificationUsecase := usecase.NewNotificationUsecase(notificationRepo, userRepo, profileRepo, emailSender, cfg.ClientURL, logger)
	var publisher events.Publisher
	if cfg.AMQP.URL != "" {
		conn, err := events.Dial(cfg.AMQP.URL, 5, 2*time.Second)
		if err != nil {
			stop()
			log.Fatalf("amqp: %v", err)
		}
		defer conn.Close()
		amqpPublisher, err := events.NewAMQPPublisher(conn, cfg.AMQP.Exchange)
		if err != nil {
			stop()
			log.Fatalf("amqp publisher: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("social events published to amqp", "exchange", cfg.AMQP.Exchange)
	} else {
		publisher = events.NewInlinePublisher(notificationUsecase.HandleEvent, logger)
	}

	var avatars storage.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:      cfg.MinIO.Endpoint,
			AccessKey:     cfg.MinIO.AccessKey,
			SecretKey:     cfg.MinIO.SecretKey,
			Bucket:        cfg.MinIO.Bucket,
			UseSSL:        cfg.MinIO.UseSSL,
			PublicBaseURL: cfg.MinIO.PublicBaseURL,
		})
		if err != nil {
			stop()
			log.Fatalf("minio: %v", err)
		}
		avatars = store
	} else {
		logger.Warn("MINIO_ENDPOINT not set, avatar uploads disabled")
	}

	var provider payment.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	// Quota
	usage := quota.NewAggregator(pasteRepo, logger, nil)
	policy := quota.NewPolicy(profileRepo, usage, logger, nil)
	views := viewcounter.New(pasteRepo, logger)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, emailSender, lockout, []byte(cfg.JWTSecret), cfg.MagicLinkBase)
	profileUsecase := usecase.NewProfileUsecase(profileRepo, followRepo, userRepo, avatars, policy, usage)
	pasteUsecase := usecase.NewPasteUsecase(pasteRepo, folderRepo, draftRepo, profileRepo, policy, views, logger)
	folderUsecase := usecase.NewFolderUsecase(folderRepo)
	draftUsecase := usecase.NewDraftUsecase(draftRepo, folderRepo)
	socialUsecase := usecase.NewSocialUsecase(usecase.SocialRepos{
		Comments:  commentRepo,
		Likes:     likeRepo,
		Favorites: favoriteRepo,
		Follows:   followRepo,
		Pastes:    pasteRepo,
		Profiles:  profileRepo,
	}, publisher, logger)
	billingUsecase := usecase.NewBillingUsecase(profileRepo, userRepo, provider, usecase.Prices{
		Monthly: cfg.Stripe.MonthlyPriceID,
		Yearly:  cfg.Stripe.YearlyPriceID,
	}, cfg.ClientURL, logger)

	router := httptransport.NewRouter(logger, httptransport.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, cfg.ClientURL, logger),
		Paste:        handler.NewPasteHandler(pasteUsecase, logger),
		Folder:       handler.NewFolderHandler(folderUsecase, draftUsecase, logger),
		Social:       handler.NewSocialHandler(socialUsecase, logger),
		Notification: handler.NewNotificationHandler(notificationUsecase, logger),
		Profile:      handler.NewProfileHandler(profileUsecase, logger),
		Billing:      handler.NewBillingHandler(billingUsecase, logger),
	}, httptransport.RouterConfig{
		JWTKey:    []byte(cfg.JWTSecret),
		ClientURL: cfg.ClientURL,
		Profiles:  profileUsecase,
	})

	var h http.Handler = router
	if cfg.OTel.Enabled {
		h = otelhttp.NewHandler(router, cfg.OTel.ServiceName)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	// in-flight view increments finish before the pool closes
	views.Wait(shutdownCtx)
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err)
	}
}
