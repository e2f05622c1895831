package core

import (
	"fmt"
	"time"

	"github.com/modfox/warden/internal/bot"
)

// handleServerInfo posts a summary embed for the invoking guild.
func handleServerInfo(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}

	guild, err := e.adapter.Guild(ev.GuildID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "Something Went Wrong", "Could not fetch server information.", bot.ColorRed)
		return
	}

	view := bot.View{
		Title:        "Server Info: " + guild.Name,
		Color:        bot.ColorBlurple,
		ThumbnailURL: guild.IconURL,
		Fields: []bot.Field{
			{Name: "Owner", Value: bot.UserMention(guild.OwnerID), Inline: true},
			{Name: "Created", Value: formatCreated(guild.CreatedAt), Inline: true},
			{Name: "Members", Value: fmt.Sprintf("%d", guild.MemberCount), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", guild.RoleCount), Inline: true},
			{Name: "Boosts", Value: fmt.Sprintf("%d (Tier %d)", guild.Boosts, guild.BoostTier), Inline: true},
			{Name: "Verification Level", Value: guild.VerificationLevel, Inline: true},
		},
	}
	if guild.Description != "" {
		view.Fields = append(view.Fields, bot.Field{Name: "Description", Value: guild.Description})
	}
	view.Fields = append(view.Fields, bot.Field{Name: "ID", Value: guild.ID, Inline: true})

	e.post(ev.ChannelID, view)
}

// handleUserInfo posts a summary embed for the mentioned member, or the
// invoking user when no target is given.
func handleUserInfo(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}

	targetID, _ := splitTarget(inv.Args)
	if targetID == "" {
		targetID = ev.UserID
	}

	member, err := e.adapter.Member(ev.GuildID, targetID)
	if err != nil {
		e.respondEmbed(ev.ChannelID, "User Not Found", "No member with ID `"+targetID+"` found in this server.", bot.ColorRed)
		return
	}

	boosting := "No"
	if member.Booster {
		boosting = "Yes"
	}

	view := bot.View{
		Title:        "User Info: " + member.DisplayName,
		Color:        bot.ColorBlurple,
		ThumbnailURL: member.AvatarURL,
		Fields: []bot.Field{
			{Name: "Username", Value: member.Username, Inline: true},
			{Name: "ID", Value: member.ID, Inline: true},
			{Name: "Account Created", Value: formatCreated(member.CreatedAt), Inline: true},
			{Name: "Joined Server", Value: formatCreated(member.JoinedAt), Inline: true},
			{Name: "Is Boosting", Value: boosting, Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(member.Roles)), Inline: true},
		},
	}
	e.post(ev.ChannelID, view)
}

// formatCreated renders a timestamp with its age in days.
func formatCreated(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	days := int(time.Since(t).Hours() / 24)
	return fmt.Sprintf("%s UTC\n(%d days ago)", t.UTC().Format("2006-01-02 15:04"), days)
}
