package constants

import "time"

// Ledger capacities
const (
	// SnipeHistorySize is the number of deleted/edited messages kept per channel
	SnipeHistorySize = 5
	// LogChannelCount is the number of channels a guild log setup needs
	LogChannelCount = 3
)

// Deadlines for the interactive commands
const (
	// SnipeSessionTimeout bounds the snipe/editsnipe browse sessions
	SnipeSessionTimeout = 2 * time.Minute
	// HelpSessionTimeout is the inactivity window for the paginated help browser
	HelpSessionTimeout = 60 * time.Second
	// LogsConfirmTimeout bounds the yes/no step of the logs setup
	LogsConfirmTimeout = 30 * time.Second
	// LogsMentionTimeout bounds the channel-mention step of the logs setup
	LogsMentionTimeout = 60 * time.Second
)

// Message limits for Discord
const (
	// MaxMessageLength is Discord's message character limit
	MaxMessageLength = 2000
	// MaxEmbedDescriptionLength is Discord's embed description limit
	MaxEmbedDescriptionLength = 4096
)

// Moderation limits
const (
	// MaxBanDeleteDays is Discord's upper bound on days of history deleted with a ban
	MaxBanDeleteDays = 7
	// MaxTimeoutDuration is Discord's upper bound on a member timeout
	MaxTimeoutDuration = 28 * 24 * time.Hour
)

// Help pagination
const (
	// CommandsPerPage is the number of commands shown on one help page
	CommandsPerPage = 5
)
