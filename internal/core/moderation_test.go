package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseUserRef tests mention and ID token parsing
func TestParseUserRef(t *testing.T) {
	assert.Equal(t, "123", parseUserRef("<@123>"))
	assert.Equal(t, "123", parseUserRef("<@!123>"))
	assert.Equal(t, "123", parseUserRef("123"))
	assert.Equal(t, "", parseUserRef("@someone"))
	assert.Equal(t, "", parseUserRef("12a3"))
	// Mention markup around a non-snowflake is still rejected.
	assert.Equal(t, "", parseUserRef("<@troublemaker>"))
	assert.Equal(t, "", parseUserRef(""))
	assert.Equal(t, "", parseUserRef("<@>"))
}

// TestParseTimeoutDuration tests the duration grammar and its bounds
func TestParseTimeoutDuration(t *testing.T) {
	d, err := parseTimeoutDuration("10m")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, d)

	d, err = parseTimeoutDuration("2h")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, d)

	d, err = parseTimeoutDuration("1d")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	d, err = parseTimeoutDuration("28d")
	require.NoError(t, err)
	assert.Equal(t, 28*24*time.Hour, d)

	_, err = parseTimeoutDuration("29d")
	assert.Error(t, err)
	_, err = parseTimeoutDuration("0s")
	assert.Error(t, err)
	_, err = parseTimeoutDuration("-5m")
	assert.Error(t, err)
	_, err = parseTimeoutDuration("soon")
	assert.Error(t, err)
	_, err = parseTimeoutDuration("xd")
	assert.Error(t, err)
}

// TestBan_Success tests the full happy path including the delete-days value
func TestBan_Success(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".ban <@1002> 7, Spamming"))

	require.Len(t, adapter.bans, 1)
	assert.Equal(t, targetID, adapter.bans[0].UserID)
	assert.Equal(t, 7, adapter.bans[0].DeleteDays)
	assert.Equal(t, "Spamming", adapter.bans[0].Reason)

	require.Equal(t, 1, adapter.postCount())
	post := adapter.lastPost()
	assert.Equal(t, "User Banned", post.View.Title)
	assert.Contains(t, post.View.Body, "Spamming")
}

// TestBan_PermKeyword tests that "perm" bans delete no message history
func TestBan_PermKeyword(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".ban <@1002> perm, Repeated offenses"))

	require.Len(t, adapter.bans, 1)
	assert.Equal(t, 0, adapter.bans[0].DeleteDays)
}

// TestBan_DefaultReason tests the fallback reason
func TestBan_DefaultReason(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".ban <@1002> 1,"))

	require.Len(t, adapter.bans, 1)
	assert.Equal(t, "No reason provided", adapter.bans[0].Reason)
}

// TestBan_Rejections tests every refusal path short of the platform call
func TestBan_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		content string
		title   string
	}{
		{"no permission", "1002", ".ban <@1003> 1, payback", "Insufficient Permissions"},
		{"missing comma", "mod", ".ban <@1002> 7 Spamming", "Invalid Usage"},
		{"no target", "mod", ".ban someone 1, reason", "Invalid Usage"},
		{"non-numeric mention", "mod", ".ban <@troublemaker> 1, reason", "Invalid Usage"},
		{"days too high", "mod", ".ban <@1002> 8, reason", "Invalid Duration"},
		{"days negative", "mod", ".ban <@1002> -1, reason", "Invalid Duration"},
		{"days not a number", "mod", ".ban <@1002> week, reason", "Invalid Duration"},
		{"unknown member", "mod", ".ban 999 1, reason", "User Not Found"},
		{"target outranks actor", "mod", ".ban <@1003> 1, reason", "Cannot Ban"},
		{"target is a bot", "mod", ".ban <@1004> 1, reason", "Cannot Ban"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, adapter := newTestEngine(t)

			e.HandleEvent(message(tt.user, tt.content))

			assert.Empty(t, adapter.bans)
			require.Equal(t, 1, adapter.postCount())
			assert.Equal(t, tt.title, adapter.lastPost().View.Title)
		})
	}
}

// TestBan_PlatformFailure tests the error surface when the gateway refuses
func TestBan_PlatformFailure(t *testing.T) {
	e, adapter := newTestEngine(t)
	adapter.banErr = errors.New("50013 missing permissions")

	e.HandleEvent(message("mod", ".ban <@1002> 1, reason"))

	require.Equal(t, 1, adapter.postCount())
	assert.Equal(t, "Ban Failed", adapter.lastPost().View.Title)
}

// TestBan_GuildOnly tests that moderation refuses outside a guild
func TestBan_GuildOnly(t *testing.T) {
	e, adapter := newTestEngine(t)

	ev := message("mod", ".ban <@1002> 1, reason")
	ev.GuildID = ""
	e.HandleEvent(ev)

	assert.Empty(t, adapter.bans)
	require.Equal(t, 1, adapter.postCount())
	assert.Equal(t, "Server Only", adapter.lastPost().View.Title)
}

// TestUnban tests the banned-state precondition and the happy path
func TestUnban(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".unban 555 Appealed"))
	require.Equal(t, 1, adapter.postCount())
	assert.Equal(t, "User Not Banned", adapter.lastPost().View.Title)

	adapter.banned["555"] = true
	e.HandleEvent(message("mod", ".unban 555 Appealed"))

	require.Len(t, adapter.unbans, 1)
	assert.Equal(t, "555", adapter.unbans[0])
	assert.Equal(t, "User Unbanned", adapter.lastPost().View.Title)
}

// TestKick tests the happy path and the hierarchy rule
func TestKick(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".kick <@1002> Being rude"))
	require.Len(t, adapter.kicks, 1)
	assert.Equal(t, targetID, adapter.kicks[0])
	assert.Equal(t, "User Kicked", adapter.lastPost().View.Title)

	e.HandleEvent(message("mod", ".kick <@1003>"))
	assert.Len(t, adapter.kicks, 1)
	assert.Equal(t, "Cannot Kick", adapter.lastPost().View.Title)
}

// TestMute tests timeout placement and the already-muted guard
func TestMute(t *testing.T) {
	e, adapter := newTestEngine(t)

	before := time.Now()
	e.HandleEvent(message("mod", ".mute <@1002> 10m Spamming"))

	require.Len(t, adapter.timeouts, 1)
	call := adapter.timeouts[0]
	assert.Equal(t, targetID, call.UserID)
	require.NotNil(t, call.Until)
	assert.WithinDuration(t, before.Add(10*time.Minute), *call.Until, 5*time.Second)
	assert.Equal(t, "User Muted", adapter.lastPost().View.Title)

	until := time.Now().Add(time.Hour)
	adapter.members[targetID].TimedOutUntil = &until
	e.HandleEvent(message("mod", ".mute <@1002> 10m Again"))

	assert.Len(t, adapter.timeouts, 1)
	assert.Equal(t, "Already Muted", adapter.lastPost().View.Title)
}

// TestMute_InvalidDuration tests the argument guard
func TestMute_InvalidDuration(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".mute <@1002> forever Spamming"))

	assert.Empty(t, adapter.timeouts)
	assert.Equal(t, "Invalid Duration", adapter.lastPost().View.Title)
}

// TestUnmute tests the active-timeout precondition and the clearing call
func TestUnmute(t *testing.T) {
	e, adapter := newTestEngine(t)

	e.HandleEvent(message("mod", ".unmute <@1002>"))
	assert.Equal(t, "Not Muted", adapter.lastPost().View.Title)
	assert.Empty(t, adapter.timeouts)

	until := time.Now().Add(time.Hour)
	adapter.members[targetID].TimedOutUntil = &until
	e.HandleEvent(message("mod", ".unmute <@1002> Forgiven"))

	require.Len(t, adapter.timeouts, 1)
	assert.Nil(t, adapter.timeouts[0].Until)
	assert.Equal(t, "User Unmuted", adapter.lastPost().View.Title)
}
