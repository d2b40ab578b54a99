package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hotelcore/internal/domain"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "hotel.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultHotelTimezone      = "UTC"
	defaultStorageTimeout     = "5s"
	defaultAutoConfirm        = "true"
	defaultRoomCleanedStatus  = "available"
	defaultNotificationTTL    = "720h"
	defaultOutboxPollInterval = "2s"
	defaultOutboxBatchSize    = "50"
	defaultOutboxMaxAttempts  = "5"
	defaultOutboxRetention    = "168h"
	defaultCleanupInterval    = "1h"
	defaultRoomLockTTL        = "10s"
	defaultRabbitExchange     = "hotel.events"
	defaultRateLimitRPS       = "10"
	defaultRateLimitBurst     = "20"
	defaultLogLevel           = "info"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	HotelLocation     *time.Location
	StorageTimeout    time.Duration
	AutoConfirm       bool
	RoomCleanedStatus domain.RoomStatus

	NotificationTTL    time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetention    time.Duration
	CleanupInterval    time.Duration

	RedisURL       string
	RoomLockTTL    time.Duration
	RabbitURL      string
	RabbitExchange string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.RabbitURL = strings.TrimSpace(os.Getenv("RABBIT_URL"))
	cfg.RabbitExchange = strings.TrimSpace(getEnv("RABBIT_EXCHANGE", defaultRabbitExchange))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")
	cfg.AutoConfirm = parseBoolEnv("AUTO_CONFIRM", defaultAutoConfirm)
	cfg.RoomCleanedStatus = domain.RoomStatus(strings.ToLower(strings.TrimSpace(getEnv("ROOM_CLEANED_STATUS", defaultRoomCleanedStatus))))

	tz := strings.TrimSpace(getEnv("HOTEL_TIMEZONE", defaultHotelTimezone))
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE value %q: %w", tz, err)
	}
	cfg.HotelLocation = loc

	durations := []struct {
		name     string
		fallback string
		dst      *time.Duration
	}{
		{"STORAGE_TIMEOUT", defaultStorageTimeout, &cfg.StorageTimeout},
		{"NOTIFICATION_TTL", defaultNotificationTTL, &cfg.NotificationTTL},
		{"OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval, &cfg.OutboxPollInterval},
		{"OUTBOX_RETENTION", defaultOutboxRetention, &cfg.OutboxRetention},
		{"CLEANUP_INTERVAL", defaultCleanupInterval, &cfg.CleanupInterval},
		{"ROOM_LOCK_TTL", defaultRoomLockTTL, &cfg.RoomLockTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.name, d.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.OutboxBatchSize, err = parseIntEnv("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize); err != nil {
		return nil, err
	}
	if cfg.OutboxMaxAttempts, err = parseIntEnv("OUTBOX_MAX_ATTEMPTS", defaultOutboxMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}
	rps := strings.TrimSpace(getEnv("RATE_LIMIT_RPS", defaultRateLimitRPS))
	if cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS value %q: %w", rps, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be > 0")
	}
	if cfg.NotificationTTL <= 0 {
		return fmt.Errorf("NOTIFICATION_TTL must be > 0")
	}
	if cfg.OutboxPollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be > 0")
	}
	if cfg.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be > 0")
	}
	if cfg.RoomLockTTL <= cfg.StorageTimeout {
		return fmt.Errorf("ROOM_LOCK_TTL must be greater than STORAGE_TIMEOUT")
	}
	if cfg.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be > 0")
	}
	if cfg.OutboxMaxAttempts <= 0 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be > 0")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}
	if cfg.RoomCleanedStatus != domain.RoomAvailable && cfg.RoomCleanedStatus != domain.RoomClean {
		return fmt.Errorf("ROOM_CLEANED_STATUS must be one of: available, clean")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
