// Package bot provides the platform adapter boundary for warden.
//
// The engine never touches platform SDK types directly: it consumes Event
// values from the adapter's inbound feed and renders View values back through
// it. The only production adapter is Discord, but everything above this
// package is platform-neutral and tests substitute a fake adapter.
//
// # Thread Safety
//
// The event handler passed to Start may be invoked concurrently from multiple
// gateway goroutines. All outbound methods are safe for concurrent use.
package bot

import "time"

// Permission is the subset of platform permissions warden checks before
// running a command.
type Permission int

const (
	PermBanMembers Permission = iota
	PermKickMembers
	PermTimeoutMembers
	PermAdministrator
)

// Member is the platform-neutral projection of a guild member.
type Member struct {
	ID          string
	Username    string
	DisplayName string
	Bot         bool
	AvatarURL   string

	CreatedAt time.Time
	JoinedAt  time.Time

	Roles           []string // role IDs, excluding @everyone
	TopRolePosition int
	Booster         bool

	// TimedOutUntil is non-nil while the member is under an active timeout.
	TimedOutUntil *time.Time
}

// Guild is the platform-neutral projection of a guild.
type Guild struct {
	ID          string
	Name        string
	OwnerID     string
	Description string
	IconURL     string

	CreatedAt   time.Time
	MemberCount int
	RoleCount   int

	Boosts            int
	BoostTier         int
	VerificationLevel string
}

// Adapter is the boundary to the chat platform. Start connects and begins
// delivering inbound events; every other method is an outbound call that can
// fail and must be treated as asynchronous with respect to the gateway.
type Adapter interface {
	// Start establishes the gateway connection and begins invoking handler
	// for every inbound event.
	Start(handler func(Event)) error

	// Stop closes the gateway connection and releases resources.
	Stop() error

	// Post sends a new message to a channel and returns its identifier.
	Post(channelID string, v View) (messageID string, err error)

	// Update edits a previously posted message in place.
	Update(channelID, messageID string, v View) error

	// Ban bans a member, deleting deleteDays days of their message history.
	Ban(guildID, userID string, deleteDays int, reason string) error

	// Unban lifts a ban by user ID.
	Unban(guildID, userID, reason string) error

	// IsBanned reports whether a ban exists for the user.
	IsBanned(guildID, userID string) (bool, error)

	// Kick removes a member from the guild.
	Kick(guildID, userID, reason string) error

	// Timeout sets a member's communication-disabled deadline; a nil until
	// clears an active timeout.
	Timeout(guildID, userID string, until *time.Time, reason string) error

	// CreatePrivateChannel creates a text channel visible only to
	// administrators and returns its identifier.
	CreatePrivateChannel(guildID, name, topic string) (channelID string, err error)

	// Member looks up a guild member.
	Member(guildID, userID string) (*Member, error)

	// Guild looks up a guild.
	Guild(guildID string) (*Guild, error)

	// HasPermission reports whether the user holds perm in the channel.
	HasPermission(channelID, userID string, perm Permission) (bool, error)
}
