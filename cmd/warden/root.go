package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "warden is a Discord moderation bot",
	Long: `warden is a Discord moderation bot providing prefix commands for bans,
kicks and timeouts, deleted/edited message recovery (snipe), per-guild
logging channels, AFK statuses, and an interactive paginated help browser.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
