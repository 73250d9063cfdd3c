package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is populated from environment variables at startup.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Stripe   StripeConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	BaseURL     string // public base URL used in verification links
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// JWTConfig holds the signing secret shared with the staff identity
// service that issues the tokens.
type JWTConfig struct {
	Secret string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
	// AdminAlertEmail receives the alert when a refund request reaches pending.
	AdminAlertEmail string
}

// StripeConfig holds the API key for refund initiation and the signing
// secret used to verify incoming webhook payloads.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// JobConfig tunes the periodic background jobs.
type JobConfig struct {
	UnverifiedTTLHours int // refund requests older than this are swept
	SweepLimit         int
	SendPendingLimit   int
	RetryFailedLimit   int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Motoshop API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "motoshop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", "localhost"),
			Port:            getEnv("SMTP_PORT", "1025"),
			From:            getEnv("SMTP_FROM", "noreply@motoshop.dev"),
			AdminAlertEmail: getEnv("ADMIN_ALERT_EMAIL", "admin@motoshop.dev"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Jobs: JobConfig{
			UnverifiedTTLHours: getEnvInt("REFUND_UNVERIFIED_TTL_HOURS", 24),
			SweepLimit:         getEnvInt("REFUND_SWEEP_LIMIT", 100),
			SendPendingLimit:   getEnvInt("NOTIFICATION_SEND_PENDING_LIMIT", 100),
			RetryFailedLimit:   getEnvInt("WEBHOOK_RETRY_FAILED_LIMIT", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations that would be unsafe in production.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set in production")
		}
		if c.Stripe.SecretKey == "" {
			fmt.Println("WARNING: Stripe secret key not set - refund initiation will not work")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
