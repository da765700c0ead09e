package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"shul-backend/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// HTTP
	Port            string
	AllowedOrigins  string
	BodyLimitBytes  int
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisURL        string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Secrets at rest (processor API keys), 32 bytes hex encoded
	SecretKey string

	// Mail (outbox delivery)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Worker
	WorkerInterval time.Duration
	WorkerTimeout  time.Duration

	// Gateway
	GatewayTimeout time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional in containers; real env always wins.
	_ = godotenv.Load()

	bodyLimit := getEnvInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = getEnvInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	secret := getEnv("JWT_SECRET_KEY", "")
	if strings.TrimSpace(secret) == "" {
		secret = getEnv("JWT_SECRET", "")
	}

	cfg := &Config{
		DBHost:          getEnv("DB_HOST", "db"),
		DBPort:          getEnvInt("DB_PORT", 5432),
		DBUser:          getEnv("DB_USER", ""),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", ""),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		DBTimeZone:      getEnv("DB_TIMEZONE", "UTC"),
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes:  bodyLimit,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RedisURL:        getEnv("REDIS_URL", ""),
		JWTSecret:       secret,
		JWTTTL:          time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		SecretKey:       getEnv("SECRET_KEY", ""),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		MailFrom:        getEnv("MAIL_FROM", "office@shul.local"),
		WorkerInterval:  time.Duration(getEnvInt("WORKER_INTERVAL_SECONDS", 60)) * time.Second,
		WorkerTimeout:   time.Duration(getEnvInt("WORKER_TIMEOUT_SECONDS", 50)) * time.Second,
		GatewayTimeout:  time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 20)) * time.Second,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
	}
	if c.SecretKey != "" && len(c.SecretKey) != 64 {
		return fmt.Errorf("SECRET_KEY must be 32 bytes hex encoded")
	}
	if c.WorkerTimeout >= c.WorkerInterval {
		return fmt.Errorf("WORKER_TIMEOUT_SECONDS must be below WORKER_INTERVAL_SECONDS")
	}
	return nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an int env var with a default fallback.
func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
