package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Credential store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	App         AppConfig
	API         APIConfig
	Credentials CredentialsConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Session     SessionConfig
	Store       StoreConfig
}

// AppConfig controls the local console server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// AccessKeyHash is the bcrypt hash of the console access key; empty disables the check.
	AccessKeyHash         string
	AuditBufferSize       int
}

// APIConfig describes the backend REST API.
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	RateBurst    int
}

// CredentialsConfig selects and configures the persistent credential store.
type CredentialsConfig struct {
	Backend    string
	FilePath   string
	Passphrase string
	Profile    string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig drives the session worker and forced logout.
type SessionConfig struct {
	CheckInterval       time.Duration
	RefreshLeeway       time.Duration
	LogoutOnAuthFailure bool
}

// StoreConfig holds state container policy.
type StoreConfig struct {
	FreshnessTTL time.Duration
	DiscardStale bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("API_RATE_LIMIT_RPS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT_RPS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "medpractice-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			BaseURL:      getEnv("API_BASE_URL", "http://localhost:8080/api"),
			Timeout:      getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			RateLimitRPS: rps,
			RateBurst:    getEnvAsInt("API_RATE_LIMIT_BURST", 5),
		},
		Credentials: CredentialsConfig{
			Backend:    getEnv("CREDENTIALS_BACKEND", BackendFile),
			FilePath:   getEnv("CREDENTIALS_FILE", defaultCredentialsFile()),
			Passphrase: os.Getenv("CREDENTIALS_PASSPHRASE"),
			Profile:    getEnv("CREDENTIALS_PROFILE", "default"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			CheckInterval:       getEnvAsDuration("SESSION_CHECK_INTERVAL", 30*time.Second),
			RefreshLeeway:       getEnvAsDuration("SESSION_REFRESH_LEEWAY", 2*time.Minute),
			LogoutOnAuthFailure: getEnvAsBool("SESSION_LOGOUT_ON_AUTH_FAILURE", true),
		},
		Store: StoreConfig{
			FreshnessTTL: getEnvAsDuration("STORE_FRESHNESS_TTL", time.Minute),
			DiscardStale: getEnvAsBool("STORE_DISCARD_STALE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	switch c.Credentials.Backend {
	case BackendFile:
		if c.Credentials.FilePath == "" {
			return fmt.Errorf("CREDENTIALS_FILE is required for the file backend")
		}
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown CREDENTIALS_BACKEND %q", c.Credentials.Backend)
	}
	if c.API.RateLimitRPS < 0 {
		return fmt.Errorf("API_RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".medpractice-credentials.json"
	}
	return filepath.Join(dir, "medpractice", "credentials.json")
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
