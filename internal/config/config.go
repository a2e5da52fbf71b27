// Package config holds runtime settings for the vault CLI.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the resolved runtime configuration.
//
// Fields:
//   - DatabasePath: location of the local SQLite vault file.
//   - AutoLockTimeout: inactivity window after which the session is locked.
//   - MTU: maximum transfer frame size in bytes for device sync.
type Config struct {
	DatabasePath    string
	AutoLockTimeout time.Duration
	MTU             int
	DeviceName      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = defaultDatabasePath()
	c.AutoLockTimeout = 5 * time.Minute
	c.MTU = 501
	c.DeviceName, _ = os.Hostname()
	if c.DeviceName == "" {
		c.DeviceName = "local"
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vault.db"
	}
	return filepath.Join(dir, "vibevault", "vault.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
