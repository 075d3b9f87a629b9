package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "solardryer/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"DRYER_HTTP_PORT"`
}

// DatabaseConfig holds the Postgres DSN.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DRYER_POSTGRES_DSN"`
}

// RedisConfig holds pub/sub and cache settings.
type RedisConfig struct {
	Addr             string `yaml:"addr" env:"DRYER_REDIS_ADDR"`
	Password         string `yaml:"password" env:"DRYER_REDIS_PASSWORD"`
	DB               int    `yaml:"db" env:"DRYER_REDIS_DB"`
	TelemetryChannel string `yaml:"telemetryChannel" env:"DRYER_TELEMETRY_CHANNEL"`
	SessionChannel   string `yaml:"sessionChannel" env:"DRYER_SESSION_CHANNEL"`
	ActiveTTL        int    `yaml:"activeTtlSeconds" env:"DRYER_ACTIVE_TTL"`
}

// DeviceConfig identifies the physical dryer.
type DeviceConfig struct {
	ID string `yaml:"id" env:"DRYER_DEVICE_ID"`
}

// StorageConfig holds the dashboard-local state layout. Key names are
// injected so tests and parallel deployments can substitute their own.
type StorageConfig struct {
	Dir        string `yaml:"dir" env:"DRYER_STATE_DIR"`
	ActiveKey  string `yaml:"activeKey" env:"DRYER_STATE_ACTIVE_KEY"`
	NameKey    string `yaml:"nameKey" env:"DRYER_STATE_NAME_KEY"`
	CounterKey string `yaml:"counterKey" env:"DRYER_STATE_COUNTER_KEY"`
}

// SamplerConfig controls the periodic sample logger.
type SamplerConfig struct {
	SampleIntervalMs int `yaml:"sampleIntervalMs" env:"DRYER_SAMPLE_INTERVAL_MS"`
}

// AuthConfig holds operator credentials. Leaving the password hash empty
// disables authentication entirely.
type AuthConfig struct {
	Operator     string `yaml:"operator" env:"DRYER_AUTH_OPERATOR"`
	PasswordHash string `yaml:"passwordHash" env:"DRYER_AUTH_PASSWORD_HASH"`
	JWTSecret    string `yaml:"jwtSecret" env:"DRYER_AUTH_JWT_SECRET"`
	TokenTTL     int    `yaml:"tokenTtlSeconds" env:"DRYER_AUTH_TOKEN_TTL"`
}

// Config defines the dryer backend configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Device   DeviceConfig   `yaml:"device"`
	Storage  StorageConfig  `yaml:"storage"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Auth     AuthConfig     `yaml:"auth"`
}

// Load reads configuration via the shared helper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Port: "8080"},
		Redis: RedisConfig{
			Addr:             "localhost:6379",
			TelemetryChannel: "solardryer:telemetry",
			SessionChannel:   "solardryer:sessions:changed",
			ActiveTTL:        86400,
		},
		Device:  DeviceConfig{ID: "dryer-01"},
		Storage: StorageConfig{Dir: "./state"},
		Sampler: SamplerConfig{SampleIntervalMs: 1000},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Device.ID) == "" {
		return nil, errors.New("config: device id required")
	}
	if cfg.AuthEnabled() && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required when auth is configured")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SampleInterval returns the sampler interval as a duration.
func (c *Config) SampleInterval() time.Duration {
	if c.Sampler.SampleIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(c.Sampler.SampleIntervalMs) * time.Millisecond
}

// ActiveSessionTTL returns the cache TTL as a duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.ActiveTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.ActiveTTL) * time.Second
}

// TokenTTL returns the auth token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTL <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTL) * time.Second
}

// AuthEnabled reports whether operator authentication is configured.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Auth.Operator) != "" && strings.TrimSpace(c.Auth.PasswordHash) != ""
}
