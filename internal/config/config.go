package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"canoncache/internal/cache"
	"canoncache/internal/logs"

	"gopkg.in/yaml.v3"
)

// CacheConfig holds the path cache tunables
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MaxEntries    int           `yaml:"max_entries"`
	QueryOverflow int           `yaml:"query_overflow"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables the background cleaner
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `yaml:"level"`
	BufferSize int    `yaml:"buffer_size"` // entries kept in memory for /admin/logs
}

// Config is the central configuration struct
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:           cache.DefaultTTL,
			MaxEntries:    cache.DefaultMaxEntries,
			QueryOverflow: cache.DefaultQueryOverflow,
			SweepInterval: 0,
		},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			BufferSize: 1000,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("CANONCACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CANONCACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	if v := os.Getenv("CANONCACHE_MAX_ENTRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CANONCACHE_MAX_ENTRIES: %w", err)
		}
		cfg.Cache.MaxEntries = n
	}
	if v := os.Getenv("CANONCACHE_QUERY_OVERFLOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CANONCACHE_QUERY_OVERFLOW: %w", err)
		}
		cfg.Cache.QueryOverflow = n
	}
	if v := os.Getenv("CANONCACHE_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CANONCACHE_SWEEP_INTERVAL: %w", err)
		}
		cfg.Cache.SweepInterval = d
	}
	if v := os.Getenv("CANONCACHE_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("CANONCACHE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Load reads path (if non-empty), then applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Cache.TTL < time.Millisecond {
		errs = append(errs, errors.New("cache.ttl must be at least 1ms"))
	}
	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, errors.New("cache.max_entries must be positive"))
	}
	if c.Cache.QueryOverflow <= 0 {
		errs = append(errs, errors.New("cache.query_overflow must be positive"))
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, errors.New("cache.sweep_interval must not be negative"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Log.BufferSize <= 0 {
		errs = append(errs, errors.New("log.buffer_size must be positive"))
	}
	if _, err := logs.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// CacheOptions converts the cache section into cache.Config.
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		TTL:           c.Cache.TTL,
		MaxEntries:    c.Cache.MaxEntries,
		QueryOverflow: c.Cache.QueryOverflow,
	}
}
