package core

import "github.com/modfox/warden/internal/bot"

// HandlerFunc runs one prefix command.
type HandlerFunc func(e *Engine, inv Invocation)

// Invocation is one parsed command call.
type Invocation struct {
	// Event is the message that carried the command.
	Event bot.Event
	// Args is the raw remainder after the command word, trimmed.
	Args string
}

// Command is one prefix command together with the static metadata the help
// browser renders. Category and Example are plain fields declared at
// registration; nothing is attached or read back dynamically.
type Command struct {
	Name        string
	Aliases     []string
	Category    string
	Description string
	Example     string
	Handler     HandlerFunc
}

// Command categories.
const (
	CategoryInformation = "Information"
	CategoryModeration  = "Moderation"
	CategoryUtility     = "Utility"
)

// commandTable is the bot's full command registration table.
func commandTable() []*Command {
	return []*Command{
		{
			Name:        "ban",
			Aliases:     []string{"banish"},
			Category:    CategoryModeration,
			Description: "Bans a user, deleting up to 7 days of their messages.",
			Example:     ".ban @user 7, Spamming",
			Handler:     handleBan,
		},
		{
			Name:        "unban",
			Aliases:     []string{"unbanish"},
			Category:    CategoryModeration,
			Description: "Unbans a user by their user ID.",
			Example:     ".unban 123456789 Appealed",
			Handler:     handleUnban,
		},
		{
			Name:        "kick",
			Aliases:     []string{"boot"},
			Category:    CategoryModeration,
			Description: "Kicks a user by mention or user ID.",
			Example:     ".kick @user Being rude",
			Handler:     handleKick,
		},
		{
			Name:        "mute",
			Aliases:     []string{"timeout", "shut", "stfu"},
			Category:    CategoryModeration,
			Description: "Timeouts a user for a specified duration and reason.",
			Example:     ".mute @user 10m Spamming",
			Handler:     handleMute,
		},
		{
			Name:        "unmute",
			Aliases:     []string{"unshut"},
			Category:    CategoryModeration,
			Description: "Removes an active timeout from a user.",
			Example:     ".unmute @user Forgiven",
			Handler:     handleUnmute,
		},
		{
			Name:        "logs",
			Category:    CategoryModeration,
			Description: "Set up a logging system for the server.",
			Example:     ".logs",
			Handler:     handleLogs,
		},
		{
			Name:        "snipe",
			Category:    CategoryUtility,
			Description: "Shows the last deleted messages in this channel with navigation buttons.",
			Example:     ".snipe",
			Handler:     handleSnipe,
		},
		{
			Name:        "editsnipe",
			Category:    CategoryUtility,
			Description: "Shows the last edited messages in this channel with navigation buttons.",
			Example:     ".editsnipe",
			Handler:     handleEditSnipe,
		},
		{
			Name:        "afk",
			Category:    CategoryUtility,
			Description: "Set your AFK status with an optional reason.",
			Example:     ".afk Lunch break",
			Handler:     handleAfk,
		},
		{
			Name:        "help",
			Aliases:     []string{"assistance"},
			Category:    CategoryUtility,
			Description: "Shows a list of all commands.",
			Example:     ".help",
			Handler:     handleHelp,
		},
		{
			Name:        "serverinfo",
			Aliases:     []string{"si"},
			Category:    CategoryInformation,
			Description: "Shows information about the server.",
			Example:     ".serverinfo",
			Handler:     handleServerInfo,
		},
		{
			Name:        "userinfo",
			Aliases:     []string{"ui"},
			Category:    CategoryInformation,
			Description: "Shows information about a user.",
			Example:     ".userinfo @user",
			Handler:     handleUserInfo,
		},
	}
}

// buildIndex maps every command name and alias to its command.
func buildIndex(commands []*Command) map[string]*Command {
	index := make(map[string]*Command)
	for _, cmd := range commands {
		index[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			index[alias] = cmd
		}
	}
	return index
}
