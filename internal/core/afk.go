package core

import (
	"fmt"
	"time"

	"github.com/modfox/warden/internal/bot"
)

// handleAfk marks the invoking user as away.
func handleAfk(e *Engine, inv Invocation) {
	reason := inv.Args
	if reason == "" {
		reason = "AFK"
	}
	e.afk.Set(inv.Event.UserID, reason)
	e.respondText(inv.Event.ChannelID,
		bot.UserMention(inv.Event.UserID)+", you are now marked as AFK: **"+reason+"**")
}

// processAfkActivity announces mentioned AFK users and clears the author's
// own AFK status, which ends on their next message.
func (e *Engine) processAfkActivity(ev bot.Event) {
	for _, userID := range ev.MentionedUsers {
		if status, ok := e.afk.Get(userID); ok {
			e.respondText(ev.ChannelID,
				bot.UserMention(userID)+" is currently AFK: **"+status.Reason+"** (set "+formatSince(time.Since(status.Since))+")")
		}
	}

	if _, ok := e.afk.Clear(ev.UserID); ok {
		e.respondText(ev.ChannelID,
			bot.UserMention(ev.UserID)+", your AFK status has been removed.")
	}
}

// formatSince humanizes an elapsed duration for AFK announcements.
func formatSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
