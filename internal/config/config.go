package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends selectable with CHATFLOW_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	// App
	Env     string `yaml:"env"`
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`

	// Storage
	Store       string `yaml:"store"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	// Redis, used by the redis store and the distributed flow lock
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:        "development",
		Addr:       ":8080",
		Metrics:    true,
		Store:      StoreMemory,
		SQLitePath: "chatflow.db",
		RedisAddr:  "localhost:6379",
		LockTTL:    10 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables. A .env file in
// the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("CHATFLOW_ENV", c.Env)
	c.Addr = getEnv("CHATFLOW_ADDR", c.Addr)
	c.Store = getEnv("CHATFLOW_STORE", c.Store)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.RedisDB = db
	}
	if v := os.Getenv("CHATFLOW_LOCK_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHATFLOW_LOCK_TTL: %w", err)
		}
		c.LockTTL = ttl
	}
	if v := os.Getenv("CHATFLOW_METRICS"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHATFLOW_METRICS: %w", err)
		}
		c.Metrics = on
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("CHATFLOW_ADDR is required")
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown CHATFLOW_STORE %q", c.Store)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("CHATFLOW_LOCK_TTL must be positive")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
