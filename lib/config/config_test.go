package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pool.MaxConnections != DefaultMaxConnections {
		t.Errorf("MaxConnections = %d, want %d", cfg.Pool.MaxConnections, DefaultMaxConnections)
	}
	if cfg.Pool.IdleTimeout.Duration() != DefaultIdleTimeout {
		t.Errorf("IdleTimeout = %v, want %v", cfg.Pool.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.DB.Driver != DefaultDriver {
		t.Errorf("Driver = %q, want %q", cfg.DB.Driver, DefaultDriver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file should return defaults, got %v", err)
	}
	if cfg.Pool.MaxConnections != DefaultMaxConnections {
		t.Errorf("MaxConnections = %d, want default %d", cfg.Pool.MaxConnections, DefaultMaxConnections)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[pool]
max_connections = 5
idle_timeout = "10s"

[db]
driver = "mysql"
address = "db.internal:3306"
user = "app"
password = "secret"
database = "orders"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Pool.MaxConnections != 5 {
		t.Errorf("MaxConnections = %d, want 5", cfg.Pool.MaxConnections)
	}
	if cfg.Pool.IdleTimeout.Duration() != 10*time.Second {
		t.Errorf("IdleTimeout = %v, want 10s", cfg.Pool.IdleTimeout)
	}
	if cfg.DB.Driver != "mysql" {
		t.Errorf("Driver = %q, want mysql", cfg.DB.Driver)
	}
	if cfg.DB.Database != "orders" {
		t.Errorf("Database = %q, want orders", cfg.DB.Database)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[pool]
max_connections = 0
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should reject max_connections = 0")
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should fail on malformed TOML")
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Pool.MaxConnections = 7
	cfg.Pool.IdleTimeout = Duration(90 * time.Second)
	cfg.DB.Database = "inventory.db"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// The file carries the duration in human-readable notation.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `idle_timeout = '1m30s'`) &&
		!strings.Contains(string(data), `idle_timeout = "1m30s"`) {
		t.Errorf("saved config should carry a duration string, got:\n%s", data)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Pool.MaxConnections != 7 {
		t.Errorf("MaxConnections = %d, want 7", loaded.Pool.MaxConnections)
	}
	if loaded.Pool.IdleTimeout.Duration() != 90*time.Second {
		t.Errorf("IdleTimeout = %v, want 1m30s", loaded.Pool.IdleTimeout)
	}
	if loaded.DB.Database != "inventory.db" {
		t.Errorf("Database = %q, want inventory.db", loaded.DB.Database)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[pool]
idle_timeout = "soon"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should reject an unparseable duration")
	}
}

func TestDurationText(t *testing.T) {
	d := Duration(45 * time.Second)
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "45s" {
		t.Errorf("MarshalText = %q, want 45s", text)
	}

	var parsed Duration
	if err := parsed.UnmarshalText([]byte("2m")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if parsed.Duration() != 2*time.Minute {
		t.Errorf("UnmarshalText = %v, want 2m", parsed)
	}

	if err := parsed.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText should reject garbage")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero max", func(c *Config) { c.Pool.MaxConnections = 0 }, true},
		{"negative max", func(c *Config) { c.Pool.MaxConnections = -1 }, true},
		{"sub-second idle timeout", func(c *Config) { c.Pool.IdleTimeout = Duration(10 * time.Millisecond) }, true},
		{"unknown driver", func(c *Config) { c.DB.Driver = "oracle" }, true},
		{"mysql missing user", func(c *Config) {
			c.DB.Driver = "mysql"
			c.DB.User = ""
		}, true},
		{"mysql complete", func(c *Config) {
			c.DB.Driver = "mysql"
			c.DB.Address = "localhost:3306"
			c.DB.User = "app"
			c.DB.Database = "orders"
		}, false},
		{"sqlite3 missing database", func(c *Config) {
			c.DB.Driver = "sqlite3"
			c.DB.Database = ""
		}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
