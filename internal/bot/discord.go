package bot

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/pkg/constants"
	"github.com/sirupsen/logrus"
)

// messageCacheSize controls how many messages the gateway state retains so
// that delete/edit events still carry the prior content.
const messageCacheSize = 1024

// discordAPI is the slice of discordgo.Session the adapter uses. Narrowing it
// to an interface lets tests substitute a mock without a live gateway.
type discordAPI interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildBan(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.GuildBan, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// DiscordAdapter implements Adapter on top of a discordgo gateway session.
type DiscordAdapter struct {
	mu      sync.RWMutex
	token   string
	session discordAPI
	handler func(Event)
}

// NewDiscordAdapter creates a Discord adapter. The gateway session is created
// in Start.
func NewDiscordAdapter(token string) *DiscordAdapter {
	return &DiscordAdapter{token: token}
}

// Start connects to the Discord gateway and begins delivering events.
func (d *DiscordAdapter) Start(handler func(Event)) error {
	d.mu.Lock()
	d.handler = handler
	d.mu.Unlock()

	logger.WithField("token", maskSecret(d.token)).Info("starting-discord-adapter")

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildBans |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	// Keep recent messages in state so delete/edit events can be
	// reconstructed with their prior content.
	session.State.MaxMessageCount = messageCacheSize

	session.AddHandler(d.onMessageCreate)
	session.AddHandler(d.onMessageUpdate)
	session.AddHandler(d.onMessageDelete)
	session.AddHandler(d.onInteractionCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()
	return nil
}

// Stop closes the gateway connection.
func (d *DiscordAdapter) Stop() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (d *DiscordAdapter) emit(ev Event) {
	d.mu.RLock()
	handler := d.handler
	d.mu.RUnlock()
	if handler != nil {
		handler(ev)
	}
}

func (d *DiscordAdapter) api() (discordAPI, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.session == nil {
		return nil, fmt.Errorf("discord session not initialized")
	}
	return d.session, nil
}

func (d *DiscordAdapter) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	mentioned := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentioned = append(mentioned, u.ID)
	}

	d.emit(Event{
		Kind:              EventMessage,
		GuildID:           m.GuildID,
		ChannelID:         m.ChannelID,
		MessageID:         m.ID,
		UserID:            m.Author.ID,
		Username:          m.Author.Username,
		Content:           m.Content,
		MentionedUsers:    mentioned,
		MentionedChannels: ChannelMentions(m.Content),
		Timestamp:         m.Timestamp,
	})
}

func (d *DiscordAdapter) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	// Embed unfurls and similar updates arrive without an author or a
	// cached prior version; those are not edits we can report.
	if m.Author == nil || m.Author.Bot || m.BeforeUpdate == nil {
		return
	}

	d.emit(Event{
		Kind:       EventMessageEdited,
		GuildID:    m.GuildID,
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		UserID:     m.Author.ID,
		Username:   m.Author.Username,
		Content:    m.Content,
		OldContent: m.BeforeUpdate.Content,
		Timestamp:  time.Now().UTC(),
	})
}

func (d *DiscordAdapter) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	// Without a cached copy the deleted content is unknown.
	before := m.BeforeDelete
	if before == nil {
		return
	}

	username := "Unknown"
	userID := ""
	if before.Author != nil {
		if before.Author.Bot {
			return
		}
		username = before.Author.Username
		userID = before.Author.ID
	}

	d.emit(Event{
		Kind:      EventMessageDeleted,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		UserID:    userID,
		Username:  username,
		Content:   before.Content,
		Timestamp: before.Timestamp,
	})
}

func (d *DiscordAdapter) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent || i.Message == nil {
		return
	}

	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}

	// Acknowledge immediately so the client does not show "interaction
	// failed"; the session re-renders through Update afterwards.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": i.ChannelID,
			"error":   err,
		}).Warn("failed-to-ack-component-interaction")
	}

	d.emit(Event{
		Kind:        EventComponent,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		MessageID:   i.Message.ID,
		UserID:      user.ID,
		Username:    user.Username,
		ComponentID: i.MessageComponentData().CustomID,
		Timestamp:   time.Now().UTC(),
	})
}

// Post sends a new message built from the view.
func (d *DiscordAdapter) Post(channelID string, v View) (string, error) {
	api, err := d.api()
	if err != nil {
		return "", err
	}
	msg, err := api.ChannelMessageSendComplex(channelID, buildMessageSend(v))
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return msg.ID, nil
}

// Update edits a previously posted message in place.
func (d *DiscordAdapter) Update(channelID, messageID string, v View) error {
	api, err := d.api()
	if err != nil {
		return err
	}
	edit := buildMessageEdit(channelID, messageID, v)
	if _, err := api.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("failed to edit message %s in channel %s: %w", messageID, channelID, err)
	}
	return nil
}

// Ban bans a member, deleting deleteDays days of message history.
func (d *DiscordAdapter) Ban(guildID, userID string, deleteDays int, reason string) error {
	api, err := d.api()
	if err != nil {
		return err
	}
	if err := api.GuildBanCreateWithReason(guildID, userID, reason, deleteDays); err != nil {
		return fmt.Errorf("failed to ban user %s: %w", userID, err)
	}
	return nil
}

// Unban lifts a ban.
func (d *DiscordAdapter) Unban(guildID, userID, reason string) error {
	api, err := d.api()
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"guild":  guildID,
		"user":   userID,
		"reason": reason,
	}).Info("unbanning-user")
	if err := api.GuildBanDelete(guildID, userID); err != nil {
		return fmt.Errorf("failed to unban user %s: %w", userID, err)
	}
	return nil
}

// IsBanned reports whether the user has an active ban in the guild.
func (d *DiscordAdapter) IsBanned(guildID, userID string) (bool, error) {
	api, err := d.api()
	if err != nil {
		return false, err
	}
	ban, err := api.GuildBan(guildID, userID)
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up ban for user %s: %w", userID, err)
	}
	return ban != nil, nil
}

// Kick removes a member from the guild.
func (d *DiscordAdapter) Kick(guildID, userID, reason string) error {
	api, err := d.api()
	if err != nil {
		return err
	}
	if err := api.GuildMemberDeleteWithReason(guildID, userID, reason); err != nil {
		return fmt.Errorf("failed to kick user %s: %w", userID, err)
	}
	return nil
}

// Timeout sets or clears a member's communication-disabled deadline.
func (d *DiscordAdapter) Timeout(guildID, userID string, until *time.Time, reason string) error {
	api, err := d.api()
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"guild":  guildID,
		"user":   userID,
		"until":  until,
		"reason": reason,
	}).Info("updating-member-timeout")
	if err := api.GuildMemberTimeout(guildID, userID, until); err != nil {
		return fmt.Errorf("failed to update timeout for user %s: %w", userID, err)
	}
	return nil
}

// CreatePrivateChannel creates a text channel hidden from @everyone.
func (d *DiscordAdapter) CreatePrivateChannel(guildID, name, topic string) (string, error) {
	api, err := d.api()
	if err != nil {
		return "", err
	}
	// The @everyone role shares the guild's ID.
	ch, err := api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:  name,
		Type:  discordgo.ChannelTypeGuildText,
		Topic: topic,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   guildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create channel %q: %w", name, err)
	}
	return ch.ID, nil
}

// Member looks up a guild member and projects it to the neutral shape.
func (d *DiscordAdapter) Member(guildID, userID string) (*Member, error) {
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	m, err := api.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	g, err := api.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return convertMember(g, m), nil
}

// Guild looks up a guild and projects it to the neutral shape.
func (d *DiscordAdapter) Guild(guildID string) (*Guild, error) {
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	g, err := api.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return convertGuild(g), nil
}

// HasPermission reports whether the user holds perm in the channel.
func (d *DiscordAdapter) HasPermission(channelID, userID string, perm Permission) (bool, error) {
	api, err := d.api()
	if err != nil {
		return false, err
	}
	perms, err := api.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve permissions for user %s: %w", userID, err)
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	return perms&permissionBit(perm) != 0, nil
}

func permissionBit(perm Permission) int64 {
	switch perm {
	case PermBanMembers:
		return discordgo.PermissionBanMembers
	case PermKickMembers:
		return discordgo.PermissionKickMembers
	case PermTimeoutMembers:
		return discordgo.PermissionModerateMembers
	case PermAdministrator:
		return discordgo.PermissionAdministrator
	default:
		return 0
	}
}

func buildMessageSend(v View) *discordgo.MessageSend {
	if v.Plain != "" {
		return &discordgo.MessageSend{Content: truncate(v.Plain, constants.MaxMessageLength)}
	}
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildEmbed(v)},
		Components: buildComponents(v.Controls),
	}
}

func buildMessageEdit(channelID, messageID string, v View) *discordgo.MessageEdit {
	edit := &discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
	}
	if v.Plain != "" {
		content := truncate(v.Plain, constants.MaxMessageLength)
		edit.Content = &content
		edit.Embeds = []*discordgo.MessageEmbed{}
		edit.Components = []discordgo.MessageComponent{}
		return edit
	}
	edit.Embeds = []*discordgo.MessageEmbed{buildEmbed(v)}
	edit.Components = buildComponents(v.Controls)
	return edit
}

func buildEmbed(v View) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       v.Title,
		Description: truncate(v.Body, constants.MaxEmbedDescriptionLength),
		Color:       v.Color,
	}
	if v.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: v.Footer}
	}
	if v.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: v.ThumbnailURL}
	}
	for _, f := range v.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

func buildComponents(controls []Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{}
	for _, c := range controls {
		row.Components = append(row.Components, discordgo.Button{
			CustomID: c.ID,
			Label:    c.Label,
			Style:    buttonStyle(c.Style),
			Disabled: c.Disabled,
		})
	}
	return []discordgo.MessageComponent{row}
}

func buttonStyle(s ControlStyle) discordgo.ButtonStyle {
	switch s {
	case StylePrimary:
		return discordgo.PrimaryButton
	case StyleSuccess:
		return discordgo.SuccessButton
	case StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back the cut up to a rune boundary so the platform never receives a
	// split multi-byte character.
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func convertMember(g *discordgo.Guild, m *discordgo.Member) *Member {
	out := &Member{
		ID:       m.User.ID,
		Username: m.User.Username,
		Bot:      m.User.Bot,
		JoinedAt: m.JoinedAt,
		Booster:  m.PremiumSince != nil,
	}
	out.DisplayName = m.Nick
	if out.DisplayName == "" {
		out.DisplayName = m.User.Username
	}
	out.AvatarURL = m.User.AvatarURL("")
	if created, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		out.CreatedAt = created
	}
	if m.CommunicationDisabledUntil != nil && m.CommunicationDisabledUntil.After(time.Now()) {
		until := *m.CommunicationDisabledUntil
		out.TimedOutUntil = &until
	}

	positions := make(map[string]int, len(g.Roles))
	for _, r := range g.Roles {
		positions[r.ID] = r.Position
	}
	for _, roleID := range m.Roles {
		if roleID == g.ID {
			continue // @everyone
		}
		out.Roles = append(out.Roles, roleID)
		if p, ok := positions[roleID]; ok && p > out.TopRolePosition {
			out.TopRolePosition = p
		}
	}
	return out
}

func convertGuild(g *discordgo.Guild) *Guild {
	out := &Guild{
		ID:          g.ID,
		Name:        g.Name,
		OwnerID:     g.OwnerID,
		Description: g.Description,
		MemberCount: g.MemberCount,
		Boosts:      g.PremiumSubscriptionCount,
		BoostTier:   int(g.PremiumTier),
	}
	if created, err := discordgo.SnowflakeTimestamp(g.ID); err == nil {
		out.CreatedAt = created
	}
	for _, r := range g.Roles {
		if r.ID == g.ID || r.Managed {
			continue
		}
		out.RoleCount++
	}
	if g.Icon != "" {
		out.IconURL = "https://cdn.discordapp.com/icons/" + g.ID + "/" + g.Icon + ".png"
	}
	switch g.VerificationLevel {
	case discordgo.VerificationLevelNone:
		out.VerificationLevel = "None"
	case discordgo.VerificationLevelLow:
		out.VerificationLevel = "Low"
	case discordgo.VerificationLevelMedium:
		out.VerificationLevel = "Medium"
	case discordgo.VerificationLevelHigh:
		out.VerificationLevel = "High"
	default:
		out.VerificationLevel = "Very High"
	}
	return out
}
