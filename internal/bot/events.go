package bot

import "time"

// EventKind discriminates the platform events the engine consumes.
type EventKind int

const (
	// EventMessage is a user message in a channel the bot can read
	EventMessage EventKind = iota
	// EventComponent is a button click on a message the bot posted
	EventComponent
	// EventMessageDeleted is a message removed from a channel
	EventMessageDeleted
	// EventMessageEdited is a message whose content changed
	EventMessageEdited
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventComponent:
		return "component"
	case EventMessageDeleted:
		return "message_deleted"
	case EventMessageEdited:
		return "message_edited"
	default:
		return "unknown"
	}
}

// Event is the platform-neutral envelope for everything the gateway delivers.
// Only the fields relevant to the event's Kind are populated.
type Event struct {
	Kind      EventKind
	GuildID   string
	ChannelID string

	// MessageID is the inbound message for EventMessage/EventMessageEdited,
	// and the bot-owned message the user clicked for EventComponent.
	MessageID string

	UserID   string
	Username string

	Content    string
	OldContent string // EventMessageEdited only

	// ComponentID is the custom identifier of the clicked button.
	ComponentID string

	// MentionedUsers and MentionedChannels carry the structural references
	// found in a message, in the order they appear.
	MentionedUsers    []string
	MentionedChannels []string

	Timestamp time.Time
}
