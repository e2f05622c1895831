package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modfox/warden/internal/bot"
)

type postedMessage struct {
	ChannelID string
	View      bot.View
}

type updatedMessage struct {
	ChannelID string
	MessageID string
	View      bot.View
}

type banCall struct {
	GuildID    string
	UserID     string
	DeleteDays int
	Reason     string
}

type timeoutCall struct {
	GuildID string
	UserID  string
	Until   *time.Time
	Reason  string
}

// fakeAdapter is an in-memory bot.Adapter for engine tests. Outbound calls
// are recorded; lookups are served from fixture maps.
type fakeAdapter struct {
	mu sync.Mutex

	nextID  int
	posts   []postedMessage
	updates []updatedMessage

	members map[string]*bot.Member
	guilds  map[string]*bot.Guild
	perms   map[string]bool
	banned  map[string]bool

	bans     []banCall
	unbans   []string
	kicks    []string
	timeouts []timeoutCall
	channels []string

	banErr    error
	createErr error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		members: make(map[string]*bot.Member),
		guilds:  make(map[string]*bot.Guild),
		perms:   make(map[string]bool),
		banned:  make(map[string]bool),
	}
}

func (f *fakeAdapter) Start(handler func(bot.Event)) error { return nil }
func (f *fakeAdapter) Stop() error                         { return nil }

func (f *fakeAdapter) Post(channelID string, v bot.View) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.posts = append(f.posts, postedMessage{ChannelID: channelID, View: v})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeAdapter) Update(channelID, messageID string, v bot.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updatedMessage{ChannelID: channelID, MessageID: messageID, View: v})
	return nil
}

func (f *fakeAdapter) Ban(guildID, userID string, deleteDays int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.banErr != nil {
		return f.banErr
	}
	f.bans = append(f.bans, banCall{GuildID: guildID, UserID: userID, DeleteDays: deleteDays, Reason: reason})
	f.banned[userID] = true
	return nil
}

func (f *fakeAdapter) Unban(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, userID)
	delete(f.banned, userID)
	return nil
}

func (f *fakeAdapter) IsBanned(guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banned[userID], nil
}

func (f *fakeAdapter) Kick(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, userID)
	return nil
}

func (f *fakeAdapter) Timeout(guildID, userID string, until *time.Time, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts = append(f.timeouts, timeoutCall{GuildID: guildID, UserID: userID, Until: until, Reason: reason})
	return nil
}

func (f *fakeAdapter) CreatePrivateChannel(guildID, name, topic string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("log-%d", len(f.channels)+1)
	f.channels = append(f.channels, id)
	return id, nil
}

func (f *fakeAdapter) Member(guildID, userID string) (*bot.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[userID]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, errors.New("unknown member")
}

func (f *fakeAdapter) Guild(guildID string) (*bot.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guilds[guildID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, errors.New("unknown guild")
}

func (f *fakeAdapter) HasPermission(channelID, userID string, perm bot.Permission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perms[userID], nil
}

func (f *fakeAdapter) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeAdapter) lastPost() postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[len(f.posts)-1]
}

func (f *fakeAdapter) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeAdapter) lastUpdate() updatedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

// findPost returns the first post whose title contains want.
func (f *fakeAdapter) findPost(want string) (postedMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if strings.Contains(p.View.Title, want) || strings.Contains(p.View.Plain, want) {
			return p, true
		}
	}
	return postedMessage{}, false
}

// Fixture member IDs. Targets are numeric because mention parsing only
// accepts snowflakes.
const (
	targetID = "1002"
	bossID   = "1003"
	robotID  = "1004"
)

// newTestEngine builds an engine over a fake adapter with a standard fixture
// cast: a moderator with every permission, a low-role target, a top-role
// admin, and a bot account.
func newTestEngine(t *testing.T) (*Engine, *fakeAdapter) {
	t.Helper()

	adapter := newFakeAdapter()
	adapter.perms["mod"] = true
	adapter.members["mod"] = &bot.Member{
		ID: "mod", Username: "moddy", DisplayName: "Moddy", TopRolePosition: 10,
	}
	adapter.members[targetID] = &bot.Member{
		ID: targetID, Username: "troublemaker", DisplayName: "Troublemaker", TopRolePosition: 1,
		CreatedAt: time.Now().Add(-90 * 24 * time.Hour),
		JoinedAt:  time.Now().Add(-30 * 24 * time.Hour),
	}
	adapter.members[bossID] = &bot.Member{
		ID: bossID, Username: "boss", DisplayName: "Boss", TopRolePosition: 20,
	}
	adapter.members[robotID] = &bot.Member{
		ID: robotID, Username: "robot", DisplayName: "Robot", Bot: true, TopRolePosition: 1,
	}
	adapter.guilds["g1"] = &bot.Guild{
		ID: "g1", Name: "Testing Grounds", OwnerID: bossID,
		CreatedAt: time.Now().Add(-365 * 24 * time.Hour),
		MemberCount: 42, RoleCount: 7, Boosts: 3, BoostTier: 1,
		VerificationLevel: "Medium",
	}

	config := &Config{}
	config.Discord.Token = "test-token"
	config.Command.Prefix = "."
	config.Snipe.HistorySize = 5

	e := NewEngine(config, adapter)
	t.Cleanup(func() { _ = e.Stop() })
	return e, adapter
}

func message(userID, content string) bot.Event {
	return bot.Event{
		Kind:      bot.EventMessage,
		GuildID:   "g1",
		ChannelID: "c1",
		UserID:    userID,
		Username:  userID,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func componentClick(messageID, userID, componentID string) bot.Event {
	return bot.Event{
		Kind:        bot.EventComponent,
		GuildID:     "g1",
		ChannelID:   "c1",
		MessageID:   messageID,
		UserID:      userID,
		ComponentID: componentID,
	}
}

func deletedMessage(channelID, username, content string) bot.Event {
	return bot.Event{
		Kind:      bot.EventMessageDeleted,
		GuildID:   "g1",
		ChannelID: channelID,
		Username:  username,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func editedMessage(channelID, username, oldContent, newContent string) bot.Event {
	return bot.Event{
		Kind:       bot.EventMessageEdited,
		GuildID:    "g1",
		ChannelID:  channelID,
		Username:   username,
		OldContent: oldContent,
		Content:    newContent,
		Timestamp:  time.Now(),
	}
}
