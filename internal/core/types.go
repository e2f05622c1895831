package core

// Config represents the complete warden configuration structure
type Config struct {
	Discord DiscordConfig `yaml:"discord"`
	Command CommandConfig `yaml:"command"`
	Snipe   SnipeConfig   `yaml:"snipe"`
	Logging LoggingConfig `yaml:"logging"`
}

// DiscordConfig represents the gateway connection configuration
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// CommandConfig represents prefix-command configuration
type CommandConfig struct {
	Prefix string `yaml:"prefix"` // Command prefix (default: ".")
}

// SnipeConfig represents the deleted/edited message history configuration
type SnipeConfig struct {
	HistorySize int `yaml:"history_size"` // Records kept per channel (default: 5)
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs (default: true)
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout (default: true)
}
