// Package daemon holds the kobo daemon configuration: a TOML file with
// sections for the API server, persistent store, sync behavior, and the
// connectivity prober. Missing file or fields fall back to defaults.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration.
type Config struct {
	API          APIConfig          `toml:"api"`
	Store        StoreConfig        `toml:"store"`
	Sync         SyncConfig         `toml:"sync"`
	Connectivity ConnectivityConfig `toml:"connectivity"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StoreConfig controls the persistent key-value store.
type StoreConfig struct {
	Path string `toml:"path"` // sqlite file; empty → ~/.kobo/kobo.db
}

// SyncConfig controls queue flushing.
type SyncConfig struct {
	EndpointURL   string `toml:"endpoint_url"`   // remote submit URL
	RecordTimeout string `toml:"record_timeout"` // per-record deadline, e.g. "10s"
	EscalateAfter int    `toml:"escalate_after"` // failed attempts before notifying
	FlushInterval string `toml:"flush_interval"` // periodic flush cadence, e.g. "5m"
}

// ConnectivityConfig controls the reachability prober.
type ConnectivityConfig struct {
	HealthURL     string `toml:"health_url"`     // empty → assume always online
	ProbeInterval string `toml:"probe_interval"` // e.g. "30s"
}

// DefaultConfig returns daemon defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7180,
			Metrics: true,
		},
		Store: StoreConfig{
			Path: "", // resolved by StorePath
		},
		Sync: SyncConfig{
			RecordTimeout: "10s",
			EscalateAfter: 3,
			FlushInterval: "5m",
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval: "30s",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the parts that would otherwise fail at runtime.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := time.ParseDuration(c.Sync.RecordTimeout); err != nil {
		return fmt.Errorf("sync.record_timeout: %w", err)
	}
	if c.Sync.FlushInterval != "" {
		if _, err := time.ParseDuration(c.Sync.FlushInterval); err != nil {
			return fmt.Errorf("sync.flush_interval: %w", err)
		}
	}
	if c.Connectivity.ProbeInterval != "" {
		if _, err := time.ParseDuration(c.Connectivity.ProbeInterval); err != nil {
			return fmt.Errorf("connectivity.probe_interval: %w", err)
		}
	}
	return nil
}

// RecordTimeout parses the per-record deadline, falling back to 10s.
func (c Config) RecordTimeout() time.Duration {
	d, err := time.ParseDuration(c.Sync.RecordTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// FlushInterval parses the periodic flush cadence, falling back to 5m.
func (c Config) FlushInterval() time.Duration {
	d, err := time.ParseDuration(c.Sync.FlushInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// ProbeInterval parses the probe interval, falling back to 30s.
func (c Config) ProbeInterval() time.Duration {
	d, err := time.ParseDuration(c.Connectivity.ProbeInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// StorePath resolves the sqlite file path, defaulting under the home
// directory and creating parent directories as needed.
func (c Config) StorePath() (string, error) {
	path := c.Store.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".kobo", "kobo.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create store directory: %w", err)
	}
	return path, nil
}

// ListenAddr returns the host:port the API server binds.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// DefaultConfigPath returns ~/.kobo/config.toml, or just the relative name
// when the home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".kobo", "config.toml")
}
