package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Relay store backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	Automation AutomationConfig
	Relay      RelayConfig
	Dashboard  DashboardConfig
	App        AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	Enabled         bool
	CredentialsPath string
}

// AutomationConfig points at the external n8n workflows.
type AutomationConfig struct {
	WebhookURL     string
	ChatWebhookURL string
	Timeout        time.Duration
}

type RelayConfig struct {
	Store              string
	RequireAuth        bool
	RateLimitPerMinute int
}

type DashboardConfig struct {
	RelayURL     string
	PollSchedule string
	Variant      string
	Timeout      time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "localink"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			Enabled:         getEnvAsBool("FIREBASE_ENABLED", false),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Automation: AutomationConfig{
			WebhookURL:     getEnv("AUTOMATION_WEBHOOK_URL", ""),
			ChatWebhookURL: getEnv("CHAT_WEBHOOK_URL", ""),
			Timeout:        getEnvAsDuration("AUTOMATION_TIMEOUT", 30*time.Second),
		},
		Relay: RelayConfig{
			Store:              strings.ToLower(getEnv("RELAY_STORE", StorePostgres)),
			RequireAuth:        getEnvAsBool("RELAY_REQUIRE_AUTH", true),
			RateLimitPerMinute: getEnvAsInt("RELAY_RATE_LIMIT_PER_MINUTE", 0),
		},
		Dashboard: DashboardConfig{
			RelayURL:     getEnv("DASHBOARD_RELAY_URL", "http://localhost:8080/functions/v1/dashboard-webhook-proxy"),
			PollSchedule: getEnv("DASHBOARD_POLL_SCHEDULE", "@every 10s"),
			Variant:      getEnv("DASHBOARD_VARIANT", "business"),
			Timeout:      getEnvAsDuration("DASHBOARD_TIMEOUT", 15*time.Second),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Relay.Store {
	case StorePostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required for the postgres relay store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis relay store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown RELAY_STORE %q", c.Relay.Store)
	}

	if c.Firebase.Enabled && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when FIREBASE_ENABLED=true")
	}

	if c.Relay.RateLimitPerMinute < 0 {
		return fmt.Errorf("RELAY_RATE_LIMIT_PER_MINUTE must not be negative")
	}

	if _, err := cron.ParseStandard(c.Dashboard.PollSchedule); err != nil {
		return fmt.Errorf("invalid DASHBOARD_POLL_SCHEDULE %q: %w", c.Dashboard.PollSchedule, err)
	}

	return nil
}

// ConnString returns the configured connection string, building one from the
// individual DB_* settings when DB_DSN is not set.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
