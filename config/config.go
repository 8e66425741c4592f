package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"layledger/database"

	"github.com/caarlos0/env/v6"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string        `env:"DATABASE_URL"`
	DatabaseName  string        `env:"DATABASE_NAME"`
	DBLockTimeout time.Duration `env:"DB_LOCK_TIMEOUT" envDefault:"5s"`

	// HTTP configuration
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Idempotency keys are disabled when RedisAddr is empty
	RedisAddr      string        `env:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Event forwarding is disabled when NATSServers is empty
	NATSServers string `env:"NATS_SERVERS"`

	// OpenTelemetry push metrics: "none", "console" or "otlp"
	OTelExporterType   string        `env:"OTEL_EXPORTER_TYPE" envDefault:"none"`
	OTelOTLPEndpoint   string        `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"layledger"`
	OTelExportInterval time.Duration `env:"OTEL_EXPORT_INTERVAL" envDefault:"30s"`

	// Weekly rollover schedule, Mondays in UTC
	RolloverEnabled bool `env:"ROLLOVER_ENABLED" envDefault:"true"`
	RolloverHour    int  `env:"ROLLOVER_HOUR" envDefault:"0"`
	RolloverMinute  int  `env:"ROLLOVER_MINUTE" envDefault:"5"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required keys and value ranges
func (c *Config) Validate() error {
	if c.RolloverHour < 0 || c.RolloverHour > 23 {
		return fmt.Errorf("ROLLOVER_HOUR must be between 0 and 23, got %d", c.RolloverHour)
	}
	if c.RolloverMinute < 0 || c.RolloverMinute > 59 {
		return fmt.Errorf("ROLLOVER_MINUTE must be between 0 and 59, got %d", c.RolloverMinute)
	}
	switch c.OTelExporterType {
	case "", "none", "console", "otlp":
	default:
		return fmt.Errorf("OTEL_EXPORTER_TYPE must be none, console or otlp, got %q", c.OTelExporterType)
	}
	if c.DBLockTimeout <= 0 {
		return fmt.Errorf("DB_LOCK_TIMEOUT must be positive")
	}

	if c.Environment == "test" {
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not blank
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() (string, error) {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequireJWTSecret returns an error when the API cannot verify tokens
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" && c.Environment != "test" {
		return fmt.Errorf("JWT_SECRET is required to serve the API")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DBLockTimeout:   5 * time.Second,
		HTTPAddr:        ":0",
		MetricsAddr:     ":0",
		JWTSecret:       "test-secret",
		IdempotencyTTL:  time.Hour,
		RolloverEnabled: false,
		RolloverMinute:  5,
		LogLevel:        "debug",
		Environment:     "test",
	}
}
