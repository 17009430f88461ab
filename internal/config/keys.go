package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys lists every settable configuration key in display order.
func Keys() []string {
	return []string{
		"storage.driver",
		"storage.path",
		"log.mode",
		"log.level",
		"log.file",
		"catalog.path",
		"catalog.watch",
		"navigator.max_results",
		"navigator.bom_top_n",
		"session.max_history",
		"user.id",
		"user.name",
	}
}

// Get retrieves a configuration value by dot-notation key.
func Get(cfg *Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "storage.driver":
		return cfg.Storage.Driver, nil
	case "storage.path":
		return cfg.Storage.Path, nil
	case "log.mode":
		return cfg.Log.Mode, nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.file":
		return cfg.Log.File, nil
	case "catalog.path":
		return cfg.Catalog.Path, nil
	case "catalog.watch":
		return strconv.FormatBool(cfg.Catalog.Watch), nil
	case "navigator.max_results":
		return strconv.Itoa(cfg.Navigator.MaxResults), nil
	case "navigator.bom_top_n":
		return strconv.Itoa(cfg.Navigator.BOMTopN), nil
	case "session.max_history":
		return strconv.Itoa(cfg.Session.MaxHistory), nil
	case "user.id":
		return cfg.User.ID, nil
	case "user.name":
		return cfg.User.Name, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set sets a configuration value by dot-notation key.
func Set(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "storage.driver":
		switch value {
		case DriverSQLite, DriverSQLite3, DriverMemory:
		default:
			return fmt.Errorf("invalid storage driver %q: want %s, %s or %s", value, DriverSQLite, DriverSQLite3, DriverMemory)
		}
		cfg.Storage.Driver = value
	case "storage.path":
		cfg.Storage.Path = value
	case "log.mode":
		cfg.Log.Mode = value
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "catalog.path":
		cfg.Catalog.Path = value
	case "catalog.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for catalog.watch: %w", err)
		}
		cfg.Catalog.Watch = b
	case "navigator.max_results":
		n, err := parsePositive(value)
		if err != nil {
			return fmt.Errorf("invalid value for navigator.max_results: %w", err)
		}
		cfg.Navigator.MaxResults = n
	case "navigator.bom_top_n":
		n, err := parsePositive(value)
		if err != nil {
			return fmt.Errorf("invalid value for navigator.bom_top_n: %w", err)
		}
		cfg.Navigator.BOMTopN = n
	case "session.max_history":
		n, err := parsePositive(value)
		if err != nil {
			return fmt.Errorf("invalid value for session.max_history: %w", err)
		}
		cfg.Session.MaxHistory = n
	case "user.id":
		cfg.User.ID = value
	case "user.name":
		cfg.User.Name = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func parsePositive(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
