package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.SyncInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "Matthias", filepath.Base(c.AppRoot))
}

func TestDefaultAppRoot(t *testing.T) {
	orig := userConfigDir
	t.Cleanup(func() { userConfigDir = orig })

	userConfigDir = func() (string, error) { return "/cfg", nil }
	assert.Equal(t, filepath.Join("/cfg", "Matthias"), DefaultAppRoot())

	userConfigDir = func() (string, error) { return "", errors.New("no home") }
	assert.Equal(t, "Matthias", DefaultAppRoot())
}

func TestDerivedPaths(t *testing.T) {
	c := Config{AppRoot: "/data"}
	assert.Equal(t, filepath.Join("/data", "Accounts"), c.AccountsDir())
	assert.Equal(t, filepath.Join("/data", "history.db"), c.HistoryDSN())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.SyncInterval)
}
