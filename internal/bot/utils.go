package bot

import "regexp"

var channelMentionRe = regexp.MustCompile(`<#(\d+)>`)

// ChannelMentions extracts channel references from raw message content in the
// order they appear. Duplicates are kept so that "first, second, third"
// assignments stay positional.
func ChannelMentions(content string) []string {
	matches := channelMentionRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// UserMention renders a user reference the platform turns into a mention.
func UserMention(userID string) string {
	return "<@" + userID + ">"
}

// ChannelMention renders a channel reference the platform turns into a link.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// maskSecret hides most of a token for logging
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
