package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagUser   string
	flagName   string
	flagDriver string
)

var rootCmd = &cobra.Command{
	Use:   "embassy",
	Short: "TechHub AI Embassy",
	Long: `The AI Embassy turns a project idea into matched resources.

A concierge captures your use case, the orchestrator analyses it and
coordinates the navigator (resource search, relevance scoring, bill of
materials) and the archivist (history, reports).

With no arguments, opens a chat with the concierge.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User id (overrides user.id)")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "", "Display name (overrides user.name)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Storage driver: sqlite, sqlite3 or memory (overrides storage.driver)")

	addChatFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(bomCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
