package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the floor engine settings read from the environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Gemini    GeminiConfig
	Advisory  AdvisoryConfig
	Pacing    PacingConfig
	Feed      FeedConfig
	LogLevel  string
	LogColors bool
}

type ServerConfig struct {
	Port                  string
	GinMode               string
	CORSAllowedOrigin     string
	AnalysisRatePerMinute int
}

// DatabaseConfig points at the guest/staff directory. Driver is "mysql" or "sqlite".
type DatabaseConfig struct {
	Driver string
	DSN    string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// PendingPolicy decides what happens to a second analysis request for a
// table that already has one in flight.
type PendingPolicy string

const (
	PolicyCoalesce PendingPolicy = "coalesce"
	PolicyReject   PendingPolicy = "reject"
)

type AdvisoryConfig struct {
	Timeout        time.Duration
	PendingPolicy  PendingPolicy
	ConsoleIdleTTL time.Duration
}

type PacingConfig struct {
	Interval  time.Duration
	Threshold time.Duration
}

// FeedConfig enables the external event feed sources. Empty URL disables a source.
type FeedConfig struct {
	RedisURL     string
	RedisChannel string
	NATSURL      string
	NATSSubject  string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:                  getEnv("PORT", "8080"),
			GinMode:               getEnv("GIN_MODE", "debug"),
			CORSAllowedOrigin:     getEnv("CORS_ALLOWED_ORIGIN", "*"),
			AnalysisRatePerMinute: getEnvInt("ANALYSIS_RATE_PER_MINUTE", 30),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "file:dinecommand.db?cache=shared"),
		},
		Gemini: GeminiConfig{
			APIKey:  firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY")),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		},
		Advisory: AdvisoryConfig{
			Timeout:        getEnvDuration("ADVISORY_TIMEOUT", 20*time.Second),
			PendingPolicy:  PendingPolicy(strings.ToLower(getEnv("ADVISORY_PENDING_POLICY", string(PolicyCoalesce)))),
			ConsoleIdleTTL: getEnvDuration("CONSOLE_IDLE_TTL", 2*time.Hour),
		},
		Pacing: PacingConfig{
			Interval:  getEnvDuration("PACING_INTERVAL", 8*time.Second),
			Threshold: getEnvDuration("PACING_THRESHOLD", 90*time.Minute),
		},
		Feed: FeedConfig{
			RedisURL:     os.Getenv("REDIS_URL"),
			RedisChannel: getEnv("REDIS_FEED_CHANNEL", "floor:tables"),
			NATSURL:      os.Getenv("NATS_URL"),
			NATSSubject:  getEnv("NATS_FEED_SUBJECT", "floor.tables"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogColors: getEnvBool("LOG_COLORS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.Database.Driver)
	}
	switch c.Advisory.PendingPolicy {
	case PolicyCoalesce, PolicyReject:
	default:
		return fmt.Errorf("ADVISORY_PENDING_POLICY must be coalesce or reject, got %q", c.Advisory.PendingPolicy)
	}
	if c.Advisory.Timeout <= 0 {
		return fmt.Errorf("ADVISORY_TIMEOUT must be positive")
	}
	if c.Pacing.Interval <= 0 {
		return fmt.Errorf("PACING_INTERVAL must be positive")
	}
	if c.Server.AnalysisRatePerMinute <= 0 {
		return fmt.Errorf("ANALYSIS_RATE_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
