// Package config loads tool configuration from file, environment, and
// defaults, in that order of increasing precedence for the environment.
//
// The config file is YAML, looked up as config.yaml in ~/.paperdesk and
// then the current directory. Every key can be overridden through the
// environment with the PAPERDESK_ prefix, e.g. PAPERDESK_API_TOKEN.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names a local storage backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the resolved tool configuration.
type Config struct {
	API struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"api"`

	Data struct {
		Dir     string `mapstructure:"dir"`
		Backend string `mapstructure:"backend"`
	} `mapstructure:"data"`

	Sync struct {
		RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	} `mapstructure:"sync"`

	Daemon struct {
		LogFile string `mapstructure:"log_file"`
	} `mapstructure:"daemon"`

	Dashboard struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"dashboard"`
}

// Load reads the configuration. When path is non-empty that exact file
// is used and must exist; otherwise the default search paths apply and
// a missing file falls back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "https://api.paperdesk.app")
	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("api.token", "")
	v.SetDefault("daemon.log_file", "")
	v.SetDefault("data.backend", BackendFile)
	v.SetDefault("sync.refresh_interval", 30*time.Second)
	v.SetDefault("dashboard.port", 8484)

	home, err := os.UserHomeDir()
	if err == nil {
		v.SetDefault("data.dir", filepath.Join(home, ".paperdesk"))
	} else {
		v.SetDefault("data.dir", ".paperdesk")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".paperdesk"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PAPERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file anywhere; defaults and environment apply.
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Data.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)",
			c.Data.Backend, BackendFile, BackendSQLite)
	}
	if c.Sync.RefreshInterval <= 0 {
		return fmt.Errorf("sync.refresh_interval must be positive")
	}
	return nil
}

// StorePath returns the backend-specific path of the local collection.
func (c *Config) StorePath() string {
	if c.Data.Backend == BackendSQLite {
		return filepath.Join(c.Data.Dir, "papers.db")
	}
	return filepath.Join(c.Data.Dir, "papers.json")
}

// DaemonLogPath returns the daemon log file, defaulting into the data
// directory.
func (c *Config) DaemonLogPath() string {
	if c.Daemon.LogFile != "" {
		return c.Daemon.LogFile
	}
	return filepath.Join(c.Data.Dir, "daemon.log")
}
