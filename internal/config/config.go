package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cart    CartConfig    `yaml:"cart"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite and a connection URL for postgres and redis.
	DSN         string `yaml:"dsn"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type CartConfig struct {
	WriteTimeout string `yaml:"write_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:      DriverSQLite,
			DSN:         filepath.Join(".gomarket", "cart.db"),
			RedisPrefix: "gomarket:",
		},
		Cart: CartConfig{
			WriteTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("os.ReadFile: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CART_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("CART_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("CART_WRITE_TIMEOUT"); v != "" {
		c.Cart.WriteTimeout = v
	}
	if v := os.Getenv("CART_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverRedis:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage dsn is empty for driver[%s]", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage driver[%s] is not supported", c.Storage.Driver)
	}

	if _, err := c.Cart.WriteTimeoutDuration(); err != nil {
		return err
	}

	return nil
}

func (c CartConfig) WriteTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.WriteTimeout)
	if err != nil {
		return 0, fmt.Errorf("write timeout[%s] is not valid: %w", c.WriteTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("write timeout[%s] is not positive", c.WriteTimeout)
	}
	return d, nil
}
