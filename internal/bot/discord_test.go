package bot

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAPI implements discordAPI in memory.
type mockAPI struct {
	sent    []*discordgo.MessageSend
	edits   []*discordgo.MessageEdit
	created []discordgo.GuildChannelCreateData

	guildBan    *discordgo.GuildBan
	guildBanErr error
	perms       int64
	member      *discordgo.Member
	guild       *discordgo.Guild
}

func (m *mockAPI) AddHandler(handler interface{}) func() { return func() {} }
func (m *mockAPI) Open() error                           { return nil }
func (m *mockAPI) Close() error                          { return nil }

func (m *mockAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.sent = append(m.sent, data)
	return &discordgo.Message{ID: "sent-1", ChannelID: channelID}, nil
}

func (m *mockAPI) ChannelMessageEditComplex(edit *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.edits = append(m.edits, edit)
	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

func (m *mockAPI) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	return nil
}

func (m *mockAPI) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	return nil
}

func (m *mockAPI) GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error {
	return nil
}

func (m *mockAPI) GuildBan(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.GuildBan, error) {
	return m.guildBan, m.guildBanErr
}

func (m *mockAPI) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	return nil
}

func (m *mockAPI) GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error {
	return nil
}

func (m *mockAPI) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	m.created = append(m.created, data)
	return &discordgo.Channel{ID: "chan-1"}, nil
}

func (m *mockAPI) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m.member == nil {
		return nil, errors.New("unknown member")
	}
	return m.member, nil
}

func (m *mockAPI) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if m.guild == nil {
		return nil, errors.New("unknown guild")
	}
	return m.guild, nil
}

func (m *mockAPI) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return m.perms, nil
}

func newMockedAdapter(api *mockAPI) *DiscordAdapter {
	d := NewDiscordAdapter("test-token")
	d.session = api
	return d
}

// TestPost_Embed tests view-to-MessageSend translation
func TestPost_Embed(t *testing.T) {
	api := &mockAPI{}
	d := newMockedAdapter(api)

	id, err := d.Post("c1", View{
		Title:  "Deleted Message #1",
		Body:   "**Author:** alice",
		Color:  ColorOrange,
		Footer: "Page 1/1",
		Fields: []Field{{Name: "Reason", Value: "Spam", Inline: true}},
		Controls: []Control{
			{ID: "left", Label: "⬅️", Style: StyleSecondary, Disabled: true},
			{ID: "right", Label: "➡️", Style: StyleSecondary},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)

	require.Len(t, api.sent, 1)
	send := api.sent[0]
	require.Len(t, send.Embeds, 1)
	embed := send.Embeds[0]
	assert.Equal(t, "Deleted Message #1", embed.Title)
	assert.Equal(t, "**Author:** alice", embed.Description)
	assert.Equal(t, ColorOrange, embed.Color)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Page 1/1", embed.Footer.Text)
	require.Len(t, embed.Fields, 1)
	assert.True(t, embed.Fields[0].Inline)

	require.Len(t, send.Components, 1)
	row, ok := send.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)
	left, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "left", left.CustomID)
	assert.True(t, left.Disabled)
	assert.Equal(t, discordgo.SecondaryButton, left.Style)
}

// TestPost_Plain tests that plain views skip the embed path
func TestPost_Plain(t *testing.T) {
	api := &mockAPI{}
	d := newMockedAdapter(api)

	_, err := d.Post("c1", View{Plain: "There's nothing to snipe!"})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "There's nothing to snipe!", api.sent[0].Content)
	assert.Empty(t, api.sent[0].Embeds)
}

// TestPost_NotStarted tests the guard against a missing gateway session
func TestPost_NotStarted(t *testing.T) {
	d := NewDiscordAdapter("test-token")

	_, err := d.Post("c1", View{Plain: "hi"})
	assert.Error(t, err)
}

// TestUpdate tests view-to-MessageEdit translation
func TestUpdate(t *testing.T) {
	api := &mockAPI{}
	d := newMockedAdapter(api)

	err := d.Update("c1", "m1", View{
		Title:    "Help",
		Controls: []Control{{ID: "next", Label: "Next", Style: StylePrimary}},
	})
	require.NoError(t, err)

	require.Len(t, api.edits, 1)
	edit := api.edits[0]
	assert.Equal(t, "c1", edit.Channel)
	assert.Equal(t, "m1", edit.ID)
	require.Len(t, edit.Embeds, 1)
	assert.Equal(t, "Help", edit.Embeds[0].Title)
	require.Len(t, edit.Components, 1)
}

// TestUpdate_PlainClearsEmbeds tests that a plain edit removes prior embeds
// and controls
func TestUpdate_PlainClearsEmbeds(t *testing.T) {
	api := &mockAPI{}
	d := newMockedAdapter(api)

	require.NoError(t, d.Update("c1", "m1", View{Plain: "done"}))

	require.Len(t, api.edits, 1)
	edit := api.edits[0]
	require.NotNil(t, edit.Content)
	assert.Equal(t, "done", *edit.Content)
	assert.NotNil(t, edit.Embeds)
	assert.Empty(t, edit.Embeds)
	assert.NotNil(t, edit.Components)
	assert.Empty(t, edit.Components)
}

// TestIsBanned tests the 404-means-unbanned translation
func TestIsBanned(t *testing.T) {
	api := &mockAPI{guildBan: &discordgo.GuildBan{}}
	d := newMockedAdapter(api)

	banned, err := d.IsBanned("g1", "u1")
	require.NoError(t, err)
	assert.True(t, banned)

	api.guildBan = nil
	api.guildBanErr = &discordgo.RESTError{Response: &http.Response{StatusCode: 404}}
	banned, err = d.IsBanned("g1", "u1")
	require.NoError(t, err)
	assert.False(t, banned)

	api.guildBanErr = errors.New("gateway on fire")
	_, err = d.IsBanned("g1", "u1")
	assert.Error(t, err)
}

// TestHasPermission tests bit checks and the administrator override
func TestHasPermission(t *testing.T) {
	api := &mockAPI{perms: discordgo.PermissionBanMembers}
	d := newMockedAdapter(api)

	ok, err := d.HasPermission("c1", "u1", PermBanMembers)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.HasPermission("c1", "u1", PermKickMembers)
	require.NoError(t, err)
	assert.False(t, ok)

	// Administrators pass every check.
	api.perms = discordgo.PermissionAdministrator
	ok, err = d.HasPermission("c1", "u1", PermTimeoutMembers)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestCreatePrivateChannel tests the @everyone view denial
func TestCreatePrivateChannel(t *testing.T) {
	api := &mockAPI{}
	d := newMockedAdapter(api)

	id, err := d.CreatePrivateChannel("g1", "action-logs", "Action logs")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", id)

	require.Len(t, api.created, 1)
	data := api.created[0]
	assert.Equal(t, "action-logs", data.Name)
	assert.Equal(t, discordgo.ChannelTypeGuildText, data.Type)
	require.Len(t, data.PermissionOverwrites, 1)
	ow := data.PermissionOverwrites[0]
	assert.Equal(t, "g1", ow.ID)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), ow.Deny)
}

// TestTruncate tests the hard length cap
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 2000))

	long := strings.Repeat("x", 5000)
	got := truncate(long, 2000)
	assert.Len(t, got, 2000)
	assert.True(t, strings.HasSuffix(got, "..."))
}

// TestTruncate_RuneBoundary tests that the cut never splits a multi-byte
// character
func TestTruncate_RuneBoundary(t *testing.T) {
	// Each arrow is 3 bytes, so two of every three cut positions land
	// mid-rune without the boundary backoff.
	long := strings.Repeat("→", 2000)
	for _, limit := range []int{20, 21, 22, 23, 24} {
		got := truncate(long, limit)
		assert.True(t, utf8.ValidString(got), "limit %d produced invalid UTF-8", limit)
		assert.LessOrEqual(t, len(got), limit)
		assert.True(t, strings.HasSuffix(got, "..."))
	}
}

// TestConvertMember tests the projection to the neutral member shape
func TestConvertMember(t *testing.T) {
	guild := &discordgo.Guild{
		ID: "200000000000000000",
		Roles: []*discordgo.Role{
			{ID: "200000000000000000", Position: 0},
			{ID: "r-low", Position: 2},
			{ID: "r-high", Position: 9},
		},
	}
	past := time.Now().Add(-time.Hour)
	m := &discordgo.Member{
		User:                       &discordgo.User{ID: "100000000000000000", Username: "alice"},
		Nick:                       "Ally",
		JoinedAt:                   time.Now().Add(-24 * time.Hour),
		Roles:                      []string{"200000000000000000", "r-low", "r-high"},
		CommunicationDisabledUntil: &past,
	}

	out := convertMember(guild, m)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, "Ally", out.DisplayName)
	assert.Equal(t, []string{"r-low", "r-high"}, out.Roles)
	assert.Equal(t, 9, out.TopRolePosition)
	assert.False(t, out.CreatedAt.IsZero())
	// A lapsed timeout does not count as muted.
	assert.Nil(t, out.TimedOutUntil)

	future := time.Now().Add(time.Hour)
	m.CommunicationDisabledUntil = &future
	m.Nick = ""
	out = convertMember(guild, m)
	assert.Equal(t, "alice", out.DisplayName)
	require.NotNil(t, out.TimedOutUntil)
	assert.WithinDuration(t, future, *out.TimedOutUntil, time.Second)
}

// TestConvertGuild tests the projection to the neutral guild shape
func TestConvertGuild(t *testing.T) {
	g := &discordgo.Guild{
		ID:      "200000000000000000",
		Name:    "Testing Grounds",
		OwnerID: "o1",
		Icon:    "abcdef",
		Roles: []*discordgo.Role{
			{ID: "200000000000000000"}, // @everyone
			{ID: "r1"},
			{ID: "r2", Managed: true}, // integration role
			{ID: "r3"},
		},
		MemberCount:              42,
		PremiumSubscriptionCount: 3,
		PremiumTier:              discordgo.PremiumTier1,
		VerificationLevel:        discordgo.VerificationLevelMedium,
	}

	out := convertGuild(g)
	assert.Equal(t, "Testing Grounds", out.Name)
	assert.Equal(t, 2, out.RoleCount)
	assert.Equal(t, 3, out.Boosts)
	assert.Equal(t, 1, out.BoostTier)
	assert.Equal(t, "Medium", out.VerificationLevel)
	assert.Equal(t, "https://cdn.discordapp.com/icons/200000000000000000/abcdef.png", out.IconURL)
	assert.False(t, out.CreatedAt.IsZero())
}
