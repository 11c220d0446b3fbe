package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 5000)

	JWTSecret     string // Required outside dev: HS256 signing secret, at least 32 bytes
	TokenIssuer   string // Optional: iss claim (default: todo-pilot)
	PublicBaseURL string // Front-end origin used in emailed links (default: http://localhost:3000)

	SMTPHost string // Optional: unset logs emails instead of sending them
	SMTPPort int    // Optional: (default: 587)
	SMTPUser string
	SMTPPass string
	SMTPFrom string // Optional: (default: SMTPUser)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // sqlite path (default: pilot.db)
	DatabaseURL    string // postgres DSN
	PepperFile     string // Path to the password pepper (default: pepper)

	MaxUploadBytes     int64    // Multipart body limit (default: 10 MiB)
	CORSAllowedOrigins []string // (default: http://localhost:3000)
	RateLimitRedisURL  string   // Optional: shared rate limit counters

	HousekeepingInterval time.Duration // (default: 1h)
	UnverifiedRetention  time.Duration // Prune never-verified accounts older than this, 0 disables (default: 30 days)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 5000),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenIssuer:   getEnvOrDefault("TOKEN_ISSUER", "todo-pilot"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", getEnvOrDefault("CLIENT_URL", "http://localhost:3000")),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "pilot.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),

		MaxUploadBytes:     int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRedisURL:  os.Getenv("RATELIMIT_REDIS_URL"),

		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		UnverifiedRetention:  getEnvDurationOrDefault("UNVERIFIED_RETENTION", 30*24*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects settings the process cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.Env != "dev" && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
	}
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
