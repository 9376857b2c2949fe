// Package config loads the client configuration from a YAML file with
// environment variable overrides (VAULTCTL_ prefix).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "VAULTCTL_"

type Config struct {
	Server struct {
		// BaseURL of the vault backend, e.g. "https://vault.example.com"
		BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
		Timeout time.Duration `json:"timeout" yaml:"timeout"`
	} `json:"server" yaml:"server"`

	Credentials struct {
		// Path of the persisted credential file. Empty means
		// <user config dir>/vaultctl/credentials.json.
		Path string `json:"path" yaml:"path"`
	} `json:"credentials" yaml:"credentials"`

	OAuth struct {
		// DefaultProvider used by `vaultctl oauth-login` when none is given.
		DefaultProvider string `json:"defaultProvider" yaml:"defaultProvider"`
		// CallbackAddr is the loopback address the CLI listens on for the
		// backend's post-authorization redirect.
		CallbackAddr string `json:"callbackAddr" yaml:"callbackAddr"`
	} `json:"oauth" yaml:"oauth"`

	Log struct {
		Level  string `json:"level" yaml:"level"`
		Pretty bool   `json:"pretty" yaml:"pretty"`
	} `json:"log" yaml:"log"`
}

// Load reads the config file at path (optional: empty path searches the
// default locations) and applies VAULTCTL_ environment overrides, e.g.
// VAULTCTL_SERVER_BASEURL.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	k := koanf.New(".")

	configFile, found := resolveConfigFile(path)
	if path != "" && !found {
		return nil, errors.Errorf("config file %s not found", path)
	}
	if found {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", configFile)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// VAULTCTL_SERVER_BASEURL -> server.baseurl
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json", FlatPaths: false}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Credentials.Path == "" {
		c.Credentials.Path = defaultCredentialsPath()
	}
	if c.OAuth.DefaultProvider == "" {
		c.OAuth.DefaultProvider = "google"
	}
	if c.OAuth.CallbackAddr == "" {
		c.OAuth.CallbackAddr = "127.0.0.1:8913"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func resolveConfigFile(path string) (string, bool) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", false
		}
		return path, true
	}
	for _, candidate := range defaultConfigPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func defaultConfigPaths() []string {
	paths := []string{"config.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "vaultctl", "config.yaml"))
	}
	return paths
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "vaultctl", "credentials.json")
}
