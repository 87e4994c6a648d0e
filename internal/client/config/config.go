package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/matthias/internal/common"
)

// Config holds runtime settings for the Matthias CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port offered when connecting without an address.
//   - AppRoot: directory holding account files, history and the media cache.
//   - SyncInterval: how often the client asks the server for a delta.
//   - RequestTimeout: per-RPC deadline.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr string
	AppRoot            string
	SyncInterval       time.Duration
	RequestTimeout     time.Duration
	LogLevel           string
}

// userConfigDir is a seam for tests.
var userConfigDir = os.UserConfigDir

// DefaultAppRoot returns <user config dir>/Matthias, or ./Matthias when the
// platform has no config dir.
func DefaultAppRoot() string {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		return common.AppDirName
	}
	return filepath.Join(dir, common.AppDirName)
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.AppRoot = DefaultAppRoot()
	c.SyncInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// AccountsDir is where the vault keeps account files.
func (c *Config) AccountsDir() string {
	return filepath.Join(c.AppRoot, "Accounts")
}

// HistoryDSN is the SQLite database holding folded server ledgers.
func (c *Config) HistoryDSN() string {
	return filepath.Join(c.AppRoot, "history.db")
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
