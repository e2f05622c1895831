// Package core wires warden together: it loads configuration, keeps the
// static command table, and runs the engine that routes gateway events to the
// message history, the session registry, and the command handlers.
package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/modfox/warden/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCommandPrefix = "."
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 100 // MB
	DefaultLogMaxBackups = 5
	DefaultLogMaxAge     = 30 // days
)

// LoadConfig loads configuration from file and expands environment variables
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig fills defaults and rejects unusable configurations
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Discord.Token) == "" {
		return fmt.Errorf("discord.token is required")
	}

	if config.Command.Prefix == "" {
		config.Command.Prefix = DefaultCommandPrefix
	}
	if strings.ContainsAny(config.Command.Prefix, " \t") {
		return fmt.Errorf("command.prefix must not contain whitespace")
	}

	if config.Snipe.HistorySize == 0 {
		config.Snipe.HistorySize = constants.SnipeHistorySize
	}
	if config.Snipe.HistorySize < 0 {
		return fmt.Errorf("snipe.history_size must be positive")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = DefaultLogMaxAge
	}

	return nil
}
