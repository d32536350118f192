package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1,lte=300"`
	MetricsEnabled         bool   `mapstructure:"metrics_enabled"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
// The memory driver keeps all data in process and is meant for local runs and tests.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL                    string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains settings for token issuance and password hashing.
type AuthConfig struct {
	// TokenLength is the number of characters in an issued auth token.
	TokenLength int `mapstructure:"token_length" validate:"gte=16,lte=128"`
	// MaxTokenAttempts bounds the generate-and-check loop before issuance fails.
	MaxTokenAttempts int `mapstructure:"max_token_attempts" validate:"gte=1,lte=100"`
	BcryptCost       int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// RateLimitConfig controls per-user request throttling on authenticated routes.
// A RequestsPerSecond of zero disables throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// Enabled reports whether per-user throttling is active.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}
