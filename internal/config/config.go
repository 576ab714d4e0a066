// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
	Notify      NotifyConfig
	Logging     LoggingConfig
	Bootstrap   BootstrapConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

type AuthConfig struct {
	SecretKey         string
	AccessTokenExpiry time.Duration
	VerifyTokenExpiry time.Duration
	ResetTokenExpiry  time.Duration
	SessionCookieName string
	OpenRegistration  bool
}

type EmailConfig struct {
	Enabled  bool
	APIKey   string
	From     string
	FromName string
}

type RateLimitConfig struct {
	PublicPerMinute int
	LoginPerMinute  int
}

type NotifyConfig struct {
	SubscriberBuffer int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// BootstrapConfig creates the first superuser on startup when set.
type BootstrapConfig struct {
	Email    string
	Password string
	FullName string
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""),
		},
		Auth: AuthConfig{
			SecretKey:         getEnv("SECRET_KEY", ""),
			AccessTokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)) * time.Minute,
			VerifyTokenExpiry: time.Duration(getEnvInt("ACCOUNT_VERIFY_EXPIRE_HOURS", 1)) * time.Hour,
			ResetTokenExpiry:  time.Duration(getEnvInt("RESET_TOKEN_EXPIRE_HOURS", 1)) * time.Hour,
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session"),
			OpenRegistration:  getEnvBool("USERS_OPEN_REGISTRATION", false),
		},
		Email: EmailConfig{
			Enabled:  getEnvBool("EMAILS_ENABLED", false),
			APIKey:   getEnv("RESEND_API_KEY", ""),
			From:     getEnv("EMAILS_FROM_EMAIL", "noreply@localhost"),
			FromName: getEnv("EMAILS_FROM_NAME", "Bushfire Beacon"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 120),
			LoginPerMinute:  getEnvInt("RATE_LIMIT_LOGIN", 10),
		},
		Notify: NotifyConfig{
			SubscriberBuffer: getEnvInt("NOTIFY_SUBSCRIBER_BUFFER", 64),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Bootstrap: BootstrapConfig{
			Email:    getEnv("FIRST_SUPERUSER_EMAIL", ""),
			Password: getEnv("FIRST_SUPERUSER_PASSWORD", ""),
			FullName: getEnv("FIRST_SUPERUSER_NAME", ""),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.SecretKey == "" {
		return Config{}, fmt.Errorf("SECRET_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
