package main

import (
	"fmt"
	"os"

	"github.com/modfox/warden/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfigFile string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  "Load and validate the configuration file without starting the bot",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := core.LoadConfig(validateConfigFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Configuration OK\n")
			fmt.Printf("  prefix:        %s\n", config.Command.Prefix)
			fmt.Printf("  snipe history: %d\n", config.Snipe.HistorySize)
			fmt.Printf("  log level:     %s\n", config.Logging.Level)
		},
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "config.yaml", "Configuration file path")
}
