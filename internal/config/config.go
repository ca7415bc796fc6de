package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the server.
type Config struct {
	App      AppConfig
	Tempo    TempoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// TempoConfig holds the remote Jira/Tempo connection values.
type TempoConfig struct {
	BaseURL              string
	PersonalAccessToken  string
	TimeoutSeconds       int
	DefaultHours         int
	IssueCacheTTLSeconds int
	MaxBulkEntries       int
}

// PostgresConfig holds DB connection values for the worklog journal.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ApplicationName string
}

// RedisConfig holds Redis connection values for the shared issue cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
	Format string
}

// AuthConfig defines parameters for the HTTP tool API.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	appName := getEnv("APP_NAME", "tempofiller")

	cfg := &Config{
		App: AppConfig{
			Name:    appName,
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "127.0.0.1"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Tempo: TempoConfig{
			BaseURL:              strings.TrimRight(os.Getenv("TEMPO_BASE_URL"), "/"),
			PersonalAccessToken:  os.Getenv("TEMPO_PAT"),
			TimeoutSeconds:       getEnvAsInt("TEMPO_TIMEOUT_SECONDS", 30),
			DefaultHours:         getEnvAsInt("TEMPO_DEFAULT_HOURS", 8),
			IssueCacheTTLSeconds: getEnvAsInt("TEMPO_ISSUE_CACHE_TTL_SECONDS", 300),
			MaxBulkEntries:       getEnvAsInt("TEMPO_MAX_BULK_ENTRIES", 100),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ApplicationName: appName,
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "tempofiller:issue:"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
	}

	return cfg, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Tempo.BaseURL == "" {
		errs = append(errs, errors.New("TEMPO_BASE_URL environment variable is required"))
	}
	if c.Tempo.PersonalAccessToken == "" {
		errs = append(errs, errors.New("TEMPO_PAT environment variable is required"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// Timeout returns the configured request timeout duration.
func (t TempoConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// IssueCacheTTL returns how long resolved issues stay fresh.
func (t TempoConfig) IssueCacheTTL() time.Duration {
	if t.IssueCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(t.IssueCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
