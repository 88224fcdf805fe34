// Package config provides TOML-backed configuration for dbpool-based
// applications. It covers the pool limits and the database endpoint the
// bundled connectors dial; the pool core itself only consumes the values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/go-i2p/dbpool/lib/validation"
)

// Default configuration values
const (
	DefaultMaxConnections = 100
	DefaultIdleTimeout    = 60 * time.Second
	DefaultDriver         = "sqlite3"
	DefaultAddress        = "127.0.0.1:3306"
	DefaultDatabase       = "app"
)

// Duration wraps time.Duration so TOML files can carry human-readable
// values like "60s" or "5m" instead of nanosecond integers.
type Duration time.Duration

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the standard duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all configuration for a dbpool instance.
type Config struct {
	Pool PoolConfig `toml:"pool"`
	DB   DBConfig   `toml:"db"`
}

// PoolConfig contains connection pool limits.
type PoolConfig struct {
	// MaxConnections is the maximum number of live connections the pool owns
	MaxConnections int `toml:"max_connections"`
	// IdleTimeout is how long an unborrowed connection may sit idle before
	// eviction, written as a duration string such as "60s"
	IdleTimeout Duration `toml:"idle_timeout"`
}

// DBConfig contains database endpoint settings for the bundled connectors.
type DBConfig struct {
	// Driver selects the connector ("mysql" or "sqlite3")
	Driver string `toml:"driver"`
	// Address is the server address (host:port); unused by sqlite3
	Address string `toml:"address"`
	// User is the database user; unused by sqlite3
	User string `toml:"user"`
	// Password is the database password; unused by sqlite3
	Password string `toml:"password"`
	// Database is the database name, or the file path for sqlite3
	Database string `toml:"database"`
	// Params holds extra driver-specific DSN parameters
	Params map[string]string `toml:"params,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxConnections: DefaultMaxConnections,
			IdleTimeout:    Duration(DefaultIdleTimeout),
		},
		DB: DBConfig{
			Driver:   DefaultDriver,
			Address:  DefaultAddress,
			Database: DefaultDatabase,
		},
	}
}

// LoadConfig reads configuration from a TOML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a TOML file.
// It creates the parent directory if it doesn't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.WithField("path", path).Debug("config saved")
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.PoolSize("pool.max_connections", c.Pool.MaxConnections); err != nil {
		return err
	}
	if err := validation.IdleTimeout("pool.idle_timeout", c.Pool.IdleTimeout.Duration()); err != nil {
		return err
	}

	switch c.DB.Driver {
	case "mysql":
		if err := validation.HostPort("db.address", c.DB.Address); err != nil {
			return err
		}
		if err := validation.Required("db.user", c.DB.User); err != nil {
			return err
		}
		if err := validation.DatabaseName("db.database", c.DB.Database); err != nil {
			return err
		}
	case "sqlite3":
		if err := validation.Required("db.database", c.DB.Database); err != nil {
			return err
		}
	default:
		return fmt.Errorf("db.driver: unknown driver %q", c.DB.Driver)
	}

	return nil
}
