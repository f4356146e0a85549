// Package config resolves process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// AppName is the display name used for Windows application directories.
const AppName = "KarukuResize"

const envPrefix = "karuku"

// Config holds settings that come from the environment rather than from the
// user's settings file.
type Config struct {
	ConfigDir         string `envconfig:"CONFIG_DIR"`
	LogDir            string `envconfig:"LOG_DIR"`
	DBPath            string `envconfig:"DB_PATH"`
	LogRetentionDays  int    `envconfig:"LOG_RETENTION_DAYS" default:"30"`
	LogMaxFiles       int    `envconfig:"LOG_MAX_FILES" default:"100"`
	Workers           int    `envconfig:"WORKERS" default:"4"`
	Dev               bool   `envconfig:"DEV"`
	LegacySettingsDir string `envconfig:"LEGACY_SETTINGS_DIR"`
}

// Env is a read-only view of environment variables.
type Env interface {
	Getenv(key string) string
}

// OSEnv reads from the process environment.
type OSEnv struct{}

func (OSEnv) Getenv(key string) string { return os.Getenv(key) }

// MapEnv is an Env backed by a map, mostly for tests.
type MapEnv map[string]string

func (m MapEnv) Getenv(key string) string { return m[key] }

// Load reads KARUKU_* variables and fills unset directories with the
// per-OS defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir(runtime.GOOS, OSEnv{}, home)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir(runtime.GOOS, OSEnv{}, home)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.ConfigDir, "history.db")
	}
	if cfg.LegacySettingsDir == "" {
		cfg.LegacySettingsDir, _ = os.Getwd()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	cfg.Dev = cfg.Dev || IsDevelopment()
	return &cfg, nil
}

// SettingsPath is the canonical GUI settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ConfigDir, "settings.json")
}

// PresetsPath is the canonical processing presets file.
func (c *Config) PresetsPath() string {
	return filepath.Join(c.ConfigDir, "processing_presets.json")
}

// DefaultConfigDir returns the directory the app keeps its settings in.
func DefaultConfigDir(goos string, env Env, home string) string {
	if goos == "windows" {
		if appData := env.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "."+strings.ToLower(AppName))
	}
	if xdg := env.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, strings.ToLower(AppName))
	}
	return filepath.Join(home, ".config", strings.ToLower(AppName))
}

// DefaultLogDir returns the directory for per-run log files.
func DefaultLogDir(goos string, env Env, home string) string {
	if goos == "windows" {
		local := env.Getenv("LOCALAPPDATA")
		if local == "" {
			local = env.Getenv("APPDATA")
		}
		if local != "" {
			return filepath.Join(local, AppName, "logs")
		}
		return filepath.Join(home, "."+strings.ToLower(AppName), "logs")
	}
	if state := env.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, strings.ToLower(AppName), "logs")
	}
	return filepath.Join(home, ".local", "state", strings.ToLower(AppName), "logs")
}
