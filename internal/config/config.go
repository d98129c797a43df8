// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Identity  IdentityConfig  `yaml:"identity"`
	Storage   StorageConfig   `yaml:"storage"`
	Invites   InvitesConfig   `yaml:"invites"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Logging   LoggingConfig   `yaml:"logging"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig controls the backing store. Driver "memory" runs without a
// database.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // "postgres" or "memory"
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig controls the optional provider cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty disables the cache
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig controls bearer token verification.
type AuthConfig struct {
	Secret    string   `yaml:"secret"`
	SkipPaths []string `yaml:"skip_paths"`
}

// IdentityConfig points at the external organization provider.
type IdentityConfig struct {
	BaseURL   string        `yaml:"base_url"`
	SecretKey string        `yaml:"secret_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StorageConfig points at the object storage backend.
type StorageConfig struct {
	BaseURL    string        `yaml:"base_url"`
	ServiceKey string        `yaml:"service_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

// InvitesConfig controls invite message rendering.
type InvitesConfig struct {
	LinkBaseURL string `yaml:"link_base_url"`
}

// DraftsConfig controls draft retention.
type DraftsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// CORSConfig controls allowed origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig controls per-user request limiting.
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	Burst             int `yaml:"burst"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "memory",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: AuthConfig{
			SkipPaths: []string{"/healthz", "/metrics"},
		},
		Invites: InvitesConfig{
			LinkBaseURL: "https://folioworks.app/join",
		},
		Drafts: DraftsConfig{
			TTL:           30 * 24 * time.Hour,
			SweepSchedule: "@hourly",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Load reads configuration from path (optional), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Auth.Secret, "AUTH_SECRET")
	setString(&c.Identity.BaseURL, "IDENTITY_BASE_URL")
	setString(&c.Identity.SecretKey, "IDENTITY_SECRET_KEY")
	setString(&c.Storage.BaseURL, "STORAGE_BASE_URL")
	setString(&c.Storage.ServiceKey, "STORAGE_SERVICE_KEY")
	setString(&c.Invites.LinkBaseURL, "INVITES_LINK_BASE_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

// Validate checks invariants that would otherwise fail at runtime.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Drafts.TTL <= 0 {
		return fmt.Errorf("draft ttl must be positive")
	}
	return nil
}
