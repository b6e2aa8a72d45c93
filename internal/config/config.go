// Package config loads process configuration from the environment.
// It is read once in main and injected into constructors, so nothing else
// in the codebase touches os.Getenv.
package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// SMTPConfig holds the outbound mail settings. An empty Host disables SMTP
// and selects the log-only sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config is the full process configuration.
type Config struct {
	Port string

	DB    DBConfig
	Redis RedisConfig
	SMTP  SMTPConfig

	// JWTSecret signs access tokens. Must be set in production.
	JWTSecret string

	// AccessTokenTTL is the lifetime of issued access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of refresh sessions.
	RefreshTokenTTL time.Duration

	// TOTPIssuer is the label shown in authenticator apps.
	TOTPIssuer string

	// RateLimitMax / RateLimitWindow bound attempts on sensitive auth
	// endpoints per client IP.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// ResetTokenTTL is the lifetime of password reset tokens.
	ResetTokenTTL time.Duration

	// AppBaseURL is the public base URL used to build reset links.
	AppBaseURL string

	// RunMigrations enables gorm AutoMigrate at startup.
	RunMigrations bool
}

// Load reads the configuration from the environment, applying defaults for
// everything except credentials.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TOTPIssuer:      getEnv("TOTP_ISSUER", "shop_backend"),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", 30*time.Minute),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		RunMigrations:   os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// getEnv returns the value of key, or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer env var, returning fallback on absence or parse error.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration parses a duration env var (e.g. "15m"), returning fallback
// on absence or parse error.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
