package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret     string `env:"JWT_SECRET,required"   validate:"required,min=32"`
	ResendAPIKey  string `env:"RESEND_API_KEY"         validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM"            validate:"required_if=Env production,required_if=Env staging"`
	MagicLinkBase string `env:"MAGIC_LINK_BASE_URL"    envDefault:"http://localhost:8080"`
	ClientURL     string `env:"CLIENT_URL"             envDefault:"http://localhost:5173"`

	// 5 magic-link requests per email per 15 minutes, then locked out.
	LoginMaxAttempts   int `env:"LOGIN_MAX_ATTEMPTS"    envDefault:"5"  validate:"min=1,max=100"`
	LoginLockoutMinute int `env:"LOGIN_LOCKOUT_MINUTES" envDefault:"15" validate:"min=1,max=1440"`

	Redis  RedisConfig
	AMQP   AMQPConfig
	MinIO  MinIOConfig
	Stripe StripeConfig
	OTel   OTelConfig
	Sweep  SweepConfig
}

// RedisConfig is optional: an empty Addr selects the in-memory limiter.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0,max=15"`
}

// AMQPConfig is optional: an empty URL delivers social events in-process.
type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"pastebin.events"`
	Queue    string `env:"AMQP_QUEUE"    envDefault:"pastebin.notifications"`
}

// MinIOConfig is optional: an empty Endpoint disables avatar uploads.
type MinIOConfig struct {
	Endpoint      string `env:"MINIO_ENDPOINT"`
	AccessKey     string `env:"MINIO_ACCESS_KEY" validate:"required_with=Endpoint"`
	SecretKey     string `env:"MINIO_SECRET_KEY" validate:"required_with=Endpoint"`
	Bucket        string `env:"MINIO_BUCKET" envDefault:"avatars"`
	UseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	PublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"`
}

type StripeConfig struct {
	SecretKey      string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`
	MonthlyPriceID string `env:"STRIPE_MONTHLY_PRICE_ID"`
	YearlyPriceID  string `env:"STRIPE_YEARLY_PRICE_ID"`
}

type OTelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED"                envDefault:"false"`
	ServiceName string  `env:"OTEL_SERVICE_NAME"           envDefault:"rich-pastebin"`
	Protocol    string  `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"grpc" validate:"oneof=grpc http/protobuf"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG"     envDefault:"1.0"  validate:"min=0,max=1"`
}

type SweepConfig struct {
	SubscriptionCron      string `env:"SWEEP_SUBSCRIPTION_CRON"     envDefault:"*/15 * * * *"`
	NotificationCron      string `env:"SWEEP_NOTIFICATION_CRON"     envDefault:"0 3 * * *"`
	NotificationRetention int    `env:"NOTIFICATION_RETENTION_DAYS" envDefault:"90" validate:"min=1,max=3650"`
}

func Load() (*Config, error) {
	// .env is a local convenience; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Env == "production" && (cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "") {
		return nil, errors.New("invalid config: STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production")
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
