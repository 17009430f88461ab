package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify embassy configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/embassy/config.yaml
Project-specific overrides can be placed in .embassy.yaml
Environment variables (EMBASSY_STORAGE_PATH, EMBASSY_LOG_LEVEL, ...) win over both.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
			return nil
		case 1:
			value, err := config.Get(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		default:
			return setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values and any validation warnings.
func displayAllConfig(cfg *config.Config) {
	for _, key := range config.Keys() {
		value, _ := config.Get(cfg, key)
		fmt.Printf("%s: %s\n", key, orDash(value))
	}
	fmt.Println(dimStyle.Render("config file: " + config.GetUserConfigPath()))

	for _, w := range cfg.Validate() {
		printStatus("⚠", w, color.FgYellow)
	}
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) error {
	if err := config.Set(cfg, key, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		return err
	}
	printStatus("✓", fmt.Sprintf("Set %s = %s", key, value), color.FgGreen)
	return nil
}
