package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/pkg/constants"
	"github.com/sirupsen/logrus"
)

const noReason = "No reason provided"

// parseUserRef extracts a user ID from a mention ("<@123>", "<@!123>") or a
// bare numeric ID. Returns "" if the token is neither.
func parseUserRef(token string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(token, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

// splitTarget pops the first token off args as a user reference.
func splitTarget(args string) (userID, rest string) {
	args = strings.TrimSpace(args)
	token := args
	if i := strings.IndexAny(args, " \t"); i >= 0 {
		token = args[:i]
		rest = strings.TrimSpace(args[i+1:])
	}
	return parseUserRef(token), rest
}

// checkPermission verifies the invoking user holds perm, responding with a
// denial embed when they do not.
func (e *Engine) checkPermission(ev bot.Event, perm bot.Permission, denial string) bool {
	ok, err := e.adapter.HasPermission(ev.ChannelID, ev.UserID, perm)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user":  ev.UserID,
			"error": err,
		}).Error("permission-check-failed")
		e.respondEmbed(ev.ChannelID, "Something Went Wrong", "Could not verify your permissions.", bot.ColorRed)
		return false
	}
	if !ok {
		e.respondEmbed(ev.ChannelID, "Insufficient Permissions", denial, bot.ColorRed)
		return false
	}
	return true
}

// canActOn enforces the hierarchy rule: the actor's top role must sit above
// the target's, and bots are never valid targets.
func (e *Engine) canActOn(ev bot.Event, target *bot.Member) bool {
	if target.Bot {
		return false
	}
	actor, err := e.adapter.Member(ev.GuildID, ev.UserID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user":  ev.UserID,
			"error": err,
		}).Error("actor-lookup-failed")
		return false
	}
	return actor.TopRolePosition > target.TopRolePosition
}

func (e *Engine) requireGuild(ev bot.Event) bool {
	if ev.GuildID == "" {
		e.respondEmbed(ev.ChannelID, "Server Only", "This command can only be used in a server.", bot.ColorRed)
		return false
	}
	return true
}

// handleBan bans a member. Argument shape: "@user <days|perm>, <reason>".
// The days value controls how much message history is deleted (0-7); every
// ban is permanent until lifted. "perm" is accepted and deletes no history.
func handleBan(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermBanMembers, "You do not have permission to ban members.") {
		return
	}

	targetID, rest := splitTarget(inv.Args)
	if targetID == "" || !strings.Contains(rest, ",") {
		e.respondEmbed(ev.ChannelID, "Invalid Usage", "Usage: "+e.prefix+"ban @user <days|perm>, <reason>", bot.ColorRed)
		return
	}

	parts := strings.SplitN(rest, ",", 2)
	durationInput := strings.TrimSpace(parts[0])
	reason := noReason
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		reason = strings.TrimSpace(parts[1])
	}

	deleteDays := 0
	if !strings.EqualFold(durationInput, "perm") {
		days, err := strconv.Atoi(durationInput)
		if err != nil || days < 0 || days > constants.MaxBanDeleteDays {
			e.respondEmbed(ev.ChannelID, "Invalid Duration",
				fmt.Sprintf("Duration must be a number of days (0-%d) of message history to delete, or 'perm'.", constants.MaxBanDeleteDays),
				bot.ColorRed)
			return
		}
		deleteDays = days
	}

	target, err := e.adapter.Member(ev.GuildID, targetID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "User Not Found", "No member with ID `"+targetID+"` found in this server.", bot.ColorRed)
		return
	}
	if !e.canActOn(ev, target) {
		e.respondEmbed(ev.ChannelID, "Cannot Ban", "You cannot ban this user.", bot.ColorRed)
		return
	}

	if err := e.adapter.Ban(ev.GuildID, targetID, deleteDays, reason); err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("ban-failed")
		e.respondEmbed(ev.ChannelID, "Ban Failed", "The platform rejected the ban.", bot.ColorRed)
		return
	}

	e.respondEmbed(ev.ChannelID, "User Banned",
		bot.UserMention(targetID)+" has been banned.\nDeleted history: "+
			fmt.Sprintf("%d day(s)", deleteDays)+"\nReason: "+reason,
		bot.ColorOrange)
	e.logModAction(ev, "Ban", targetID, reason, 0)
}

// handleUnban lifts a ban by user ID.
func handleUnban(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermBanMembers, "You do not have permission to unban members.") {
		return
	}

	targetID, rest := splitTarget(inv.Args)
	if targetID == "" {
		e.respondEmbed(ev.ChannelID, "Invalid Usage", "Usage: "+e.prefix+"unban <userId> [reason]", bot.ColorRed)
		return
	}
	reason := noReason
	if rest != "" {
		reason = rest
	}

	banned, err := e.adapter.IsBanned(ev.GuildID, targetID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("ban-lookup-failed")
		e.respondEmbed(ev.ChannelID, "Something Went Wrong", "Could not look up the ban list.", bot.ColorRed)
		return
	}
	if !banned {
		e.respondEmbed(ev.ChannelID, "User Not Banned", "No banned user with ID `"+targetID+"` found.", bot.ColorRed)
		return
	}

	if err := e.adapter.Unban(ev.GuildID, targetID, reason); err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("unban-failed")
		e.respondEmbed(ev.ChannelID, "Unban Failed", "The platform rejected the unban.", bot.ColorRed)
		return
	}

	e.respondEmbed(ev.ChannelID, "User Unbanned",
		"User with ID `"+targetID+"` has been unbanned.\nReason: "+reason, bot.ColorGreen)
	e.logModAction(ev, "Unban", targetID, reason, 0)
}

// handleKick removes a member by mention or ID.
func handleKick(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermKickMembers, "You do not have permission to kick members.") {
		return
	}

	targetID, rest := splitTarget(inv.Args)
	if targetID == "" {
		e.respondEmbed(ev.ChannelID, "Invalid Usage", "Usage: "+e.prefix+"kick <user> [reason]", bot.ColorRed)
		return
	}
	reason := noReason
	if rest != "" {
		reason = rest
	}

	target, err := e.adapter.Member(ev.GuildID, targetID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "User Not Found", "No member with ID `"+targetID+"` found in this server.", bot.ColorRed)
		return
	}
	if !e.canActOn(ev, target) {
		e.respondEmbed(ev.ChannelID, "Cannot Kick", "You cannot kick this user.", bot.ColorRed)
		return
	}

	if err := e.adapter.Kick(ev.GuildID, targetID, reason); err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("kick-failed")
		e.respondEmbed(ev.ChannelID, "Kick Failed", "The platform rejected the kick.", bot.ColorRed)
		return
	}

	e.respondEmbed(ev.ChannelID, "User Kicked",
		bot.UserMention(targetID)+" has been kicked.\nReason: "+reason, bot.ColorOrange)
	e.logModAction(ev, "Kick", targetID, reason, 0)
}

// handleMute sets a timeout. Argument shape: "@user <duration> [reason]"
// where duration accepts Go forms plus a day suffix ("30s", "10m", "2h",
// "1d").
func handleMute(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermTimeoutMembers, "You do not have permission to mute members.") {
		return
	}

	targetID, rest := splitTarget(inv.Args)
	if targetID == "" || rest == "" {
		e.respondEmbed(ev.ChannelID, "Invalid Usage", "Usage: "+e.prefix+"mute @user <duration> [reason]", bot.ColorRed)
		return
	}

	durToken := rest
	reason := noReason
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		durToken = rest[:i]
		if r := strings.TrimSpace(rest[i+1:]); r != "" {
			reason = r
		}
	}

	duration, err := parseTimeoutDuration(durToken)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "Invalid Duration",
			"Duration must be like 30s, 10m, 2h or 1d, up to 28 days.", bot.ColorRed)
		return
	}

	target, err := e.adapter.Member(ev.GuildID, targetID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "User Not Found", "No member with ID `"+targetID+"` found in this server.", bot.ColorRed)
		return
	}
	if target.TimedOutUntil != nil {
		e.respondEmbed(ev.ChannelID, "Already Muted", bot.UserMention(targetID)+" is already muted.", bot.ColorRed)
		return
	}
	if !e.canActOn(ev, target) {
		e.respondEmbed(ev.ChannelID, "Cannot Mute", "You cannot mute this user.", bot.ColorRed)
		return
	}

	until := time.Now().UTC().Add(duration)
	if err := e.adapter.Timeout(ev.GuildID, targetID, &until, reason); err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("timeout-failed")
		e.respondEmbed(ev.ChannelID, "Mute Failed", "The platform rejected the timeout.", bot.ColorRed)
		return
	}

	e.respondEmbed(ev.ChannelID, "User Muted",
		bot.UserMention(targetID)+" has been muted for "+duration.String()+".\nReason: "+reason,
		bot.ColorGreen)
	e.logModAction(ev, "Mute", targetID, reason, duration)
}

// handleUnmute clears an active timeout.
func handleUnmute(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermTimeoutMembers, "You do not have permission to unmute members.") {
		return
	}

	targetID, rest := splitTarget(inv.Args)
	if targetID == "" {
		e.respondEmbed(ev.ChannelID, "Invalid Usage", "Usage: "+e.prefix+"unmute @user [reason]", bot.ColorRed)
		return
	}
	reason := noReason
	if rest != "" {
		reason = rest
	}

	target, err := e.adapter.Member(ev.GuildID, targetID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "User Not Found", "No member with ID `"+targetID+"` found in this server.", bot.ColorRed)
		return
	}
	if target.TimedOutUntil == nil {
		e.respondEmbed(ev.ChannelID, "Not Muted", bot.UserMention(targetID)+" is not currently muted.", bot.ColorRed)
		return
	}

	if err := e.adapter.Timeout(ev.GuildID, targetID, nil, reason); err != nil {
		logger.WithFields(logrus.Fields{
			"guild":  ev.GuildID,
			"target": targetID,
			"error":  err,
		}).Error("untimeout-failed")
		e.respondEmbed(ev.ChannelID, "Unmute Failed", "The platform rejected the unmute.", bot.ColorRed)
		return
	}

	e.respondEmbed(ev.ChannelID, "User Unmuted",
		bot.UserMention(targetID)+" has been unmuted.\nReason: "+reason, bot.ColorGreen)
	e.logModAction(ev, "Unmute", targetID, reason, 0)
}

// parseTimeoutDuration parses a timeout duration, accepting Go duration
// syntax plus a whole-day suffix.
func parseTimeoutDuration(token string) (time.Duration, error) {
	var d time.Duration
	if strings.HasSuffix(token, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(token, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", token)
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		var err error
		d, err = time.ParseDuration(token)
		if err != nil {
			return 0, err
		}
	}
	if d <= 0 || d > constants.MaxTimeoutDuration {
		return 0, fmt.Errorf("duration %s out of range", d)
	}
	return d, nil
}

// logModAction mirrors a completed moderation action to the guild's
// action-log channel, when one is configured.
func (e *Engine) logModAction(ev bot.Event, action, targetID, reason string, duration time.Duration) {
	set, ok := e.logChannels.Get(ev.GuildID)
	if !ok || set.Action == "" {
		return
	}

	body := "**User:** " + bot.UserMention(targetID) + " (" + targetID + ")\n" +
		"**Moderator:** " + bot.UserMention(ev.UserID) + " (" + ev.UserID + ")\n"
	if duration > 0 {
		body += "**Duration:** " + duration.String() + "\n"
	}
	body += "**Reason:** " + reason

	e.post(set.Action, bot.View{
		Title: "Moderation Action: " + action,
		Body:  body,
		Color: bot.ColorOrange,
	})
}
