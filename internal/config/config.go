package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Lifecycle LifecycleConfig
	Notify    NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
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

// AuthConfig defines bearer-token parameters for the authenticated surface.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// LifecycleConfig defines account lifecycle parameters.
type LifecycleConfig struct {
	BaseURL              string
	ConfirmationTTLHours int
	ResetTTLMinutes      int
	BcryptCost           int
	DefaultFederalState  string
	SweepIntervalMinutes int
}

// NotifyConfig configures the notification dispatcher.
type NotifyConfig struct {
	EmailFrom string
	QueueSize int
	Workers   int
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
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
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Lifecycle: LifecycleConfig{
			BaseURL:              getEnv("LIFECYCLE_BASE_URL", "http://localhost:8080"),
			ConfirmationTTLHours: getEnvAsInt("LIFECYCLE_CONFIRMATION_TTL_HOURS", 72),
			ResetTTLMinutes:      getEnvAsInt("LIFECYCLE_RESET_TTL_MINUTES", 30),
			BcryptCost:           getEnvAsInt("LIFECYCLE_BCRYPT_COST", 12),
			DefaultFederalState:  getEnv("LIFECYCLE_DEFAULT_FEDERAL_STATE", "Brandenburg"),
			SweepIntervalMinutes: getEnvAsInt("LIFECYCLE_SWEEP_INTERVAL_MINUTES", 60),
		},
		Notify: NotifyConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			QueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 128),
			Workers:   getEnvAsInt("NOTIFY_WORKERS", 2),
		},
	}

	return cfg, nil
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

// ConfirmationTTL returns the confirmation token lifetime.
func (l LifecycleConfig) ConfirmationTTL() time.Duration {
	return time.Duration(l.ConfirmationTTLHours) * time.Hour
}

// ResetTTL returns the password reset token lifetime.
func (l LifecycleConfig) ResetTTL() time.Duration {
	return time.Duration(l.ResetTTLMinutes) * time.Minute
}

// SweepInterval returns the housekeeping sweep period.
func (l LifecycleConfig) SweepInterval() time.Duration {
	return time.Duration(l.SweepIntervalMinutes) * time.Minute
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
