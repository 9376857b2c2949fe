package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultctl/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	require.Equal(t, 30*time.Second, cfg.Server.Timeout)
	require.Equal(t, "google", cfg.OAuth.DefaultProvider)
	require.Equal(t, "127.0.0.1:8913", cfg.OAuth.CallbackAddr)
	require.Equal(t, "info", cfg.Log.Level)
	require.NotEmpty(t, cfg.Credentials.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  baseUrl: https://vault.example.com/
  timeout: 10s
oauth:
  defaultProvider: github
log:
  level: debug
  pretty: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	// trailing slash is stripped so path joins stay predictable
	require.Equal(t, "https://vault.example.com", cfg.Server.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Server.Timeout)
	require.Equal(t, "github", cfg.OAuth.DefaultProvider)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  baseUrl: https://file.example.com
`)
	t.Setenv("VAULTCTL_SERVER_BASEURL", "https://env.example.com")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Server.BaseURL)
}
