// Package config handles configuration loading and management for the embassy.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers understood by the state package.
const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, cgo
	DriverMemory  = "memory"
)

// Config holds all configuration for the embassy.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Navigator NavigatorConfig `mapstructure:"navigator"`
	Session   SessionConfig   `mapstructure:"session"`
	User      UserConfig      `mapstructure:"user"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the data directory; the database lives at Path/embassy.db.
	Path string `mapstructure:"path"`
}

// DBPath returns the database file inside the data directory.
func (s StorageConfig) DBPath() string {
	return filepath.Join(s.Path, "embassy.db")
}

// LogConfig holds logger settings.
type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// CatalogConfig points at an optional YAML catalog file or directory.
type CatalogConfig struct {
	// Path is empty for the built-in mock catalog.
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// NavigatorConfig holds result limits.
type NavigatorConfig struct {
	MaxResults int `mapstructure:"max_results"`
	BOMTopN    int `mapstructure:"bom_top_n"`
}

// SessionConfig holds conversation settings.
type SessionConfig struct {
	MaxHistory int `mapstructure:"max_history"`
}

// UserConfig identifies the local user of the CLI.
type UserConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (EMBASSY_STORAGE_PATH, EMBASSY_LOG_LEVEL, ...)
// 2. Project config (.embassy.yaml in current directory or parent)
// 3. User config (~/.config/embassy/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)

	return cfg, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	for _, key := range Keys() {
		value, err := Get(cfg, key)
		if err != nil {
			return err
		}
		v.Set(key, value)
	}

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// Validate normalises cfg in place and returns human-readable warnings.
func (c *Config) Validate() []string {
	var warnings []string

	switch c.Storage.Driver {
	case DriverSQLite, DriverSQLite3, DriverMemory:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown storage driver %q, falling back to %s", c.Storage.Driver, DriverSQLite))
		c.Storage.Driver = DriverSQLite
	}

	if c.Catalog.Watch && c.Catalog.Path == "" {
		warnings = append(warnings, "catalog.watch is set but catalog.path is empty; using the built-in catalog without watching")
		c.Catalog.Watch = false
	}

	if c.Navigator.MaxResults <= 0 {
		warnings = append(warnings, "navigator.max_results must be positive, using 10")
		c.Navigator.MaxResults = 10
	}
	if c.Navigator.BOMTopN <= 0 {
		warnings = append(warnings, "navigator.bom_top_n must be positive, using 5")
		c.Navigator.BOMTopN = 5
	}

	return warnings
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)

	v.SetDefault("navigator.max_results", d.Navigator.MaxResults)
	v.SetDefault("navigator.bom_top_n", d.Navigator.BOMTopN)

	v.SetDefault("session.max_history", d.Session.MaxHistory)

	v.SetDefault("user.id", d.User.ID)
	v.SetDefault("user.name", d.User.Name)
}

// bindEnv maps EMBASSY_SECTION_KEY variables onto section.key.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("embassy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// getUserConfigDir returns the XDG config directory for the embassy.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "embassy")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "embassy")
	}
	return filepath.Join(home, ".config", "embassy")
}

// defaultDataDir returns the XDG data directory for the embassy.
func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "embassy")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(home, ".local", "share", "embassy")
}

// findProjectConfig searches for .embassy.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".embassy.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandPath expands ${VAR} references and a leading ~.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   defaultDataDir(),
		},
		Log: LogConfig{
			Mode:  "development",
			Level: "info",
		},
		Navigator: NavigatorConfig{
			MaxResults: 10,
			BOMTopN:    5,
		},
		Session: SessionConfig{
			MaxHistory: 100,
		},
		User: UserConfig{
			ID:   "demo_user",
			Name: "Demo User",
		},
	}
}
