package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"esports-scoreboard/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ServerPort         string
	DBPath             string
	LogLevel           string
	ExportDir          string
	QualificationLimit int
	WebhookURLs        []string
	WebhookTimeout     time.Duration
	SubscriberBuffer   int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		DBPath:      getEnv("DB_PATH", "scoreboard.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ExportDir:   getEnv("EXPORT_DIR", "./exports"),
		WebhookURLs: splitList(getEnv("WEBHOOK_URLS", "")),
	}

	var err error
	if cfg.QualificationLimit, err = getEnvInt("QUALIFICATION_LIMIT", constants.DefaultQualificationLimit); err != nil {
		return nil, err
	}
	if cfg.QualificationLimit < 0 {
		return nil, fmt.Errorf("QUALIFICATION_LIMIT must be zero or greater, got %d", cfg.QualificationLimit)
	}

	if cfg.SubscriberBuffer, err = getEnvInt("SUBSCRIBER_BUFFER", constants.DefaultSubscriberBuffer); err != nil {
		return nil, err
	}
	if cfg.SubscriberBuffer < 1 {
		return nil, fmt.Errorf("SUBSCRIBER_BUFFER must be at least 1, got %d", cfg.SubscriberBuffer)
	}

	cfg.WebhookTimeout, err = time.ParseDuration(getEnv("WEBHOOK_TIMEOUT", constants.WebhookTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}
	if cfg.WebhookTimeout <= 0 {
		return nil, fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %s", cfg.WebhookTimeout)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Str("export_dir", cfg.ExportDir).
		Int("qualification_limit", cfg.QualificationLimit).
		Int("webhooks", len(cfg.WebhookURLs)).
		Dur("webhook_timeout", cfg.WebhookTimeout).
		Int("subscriber_buffer", cfg.SubscriberBuffer).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
