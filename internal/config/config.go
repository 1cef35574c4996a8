package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all process configuration read from environment variables.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     uint
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	JWTSecret     string
	SessionCookie string
	SessionTTL    time.Duration

	PublicBaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	EmailAPIKey  string
	EmailAPIBase string
	EmailFrom    string

	LLMAPIKey  string
	LLMAPIBase string
	LLMModel   string

	DefaultTaxRate float64

	AdminEmail    string
	AdminPassword string
}

// Load reads the environment and returns a Config. It fails fast on the
// handful of values the process cannot run without.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:          getenv("LISTEN_ADDR", ":8080"),
		DBHost:              getenv("DB_HOST", "localhost"),
		DBName:              getenv("DB_NAME", "chatmanfire"),
		DBUser:              getenv("DB_USER", "postgres"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBSSLMode:           getenv("DB_SSL_MODE", "disable"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionCookie:       getenv("SESSION_COOKIE", "csf_session"),
		SessionTTL:          7 * 24 * time.Hour,
		PublicBaseURL:       getenv("PUBLIC_BASE_URL", "https://chatmanfire.com"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		EmailAPIKey:         os.Getenv("EMAIL_API_KEY"),
		EmailAPIBase:        getenv("EMAIL_API_BASE", "https://api.resend.com"),
		EmailFrom:           getenv("EMAIL_FROM", "no-reply@chatmanfire.com"),
		LLMAPIKey:           os.Getenv("LLM_API_KEY"),
		LLMAPIBase:          getenv("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:            getenv("LLM_MODEL", "gpt-4o-mini"),
		DefaultTaxRate:      0.0825,
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
	}

	port, err := strconv.ParseUint(getenv("DB_PORT", "5432"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.DBPort = uint(port)

	if rate := os.Getenv("TAX_RATE"); rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
		}
		cfg.DefaultTaxRate = v
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
