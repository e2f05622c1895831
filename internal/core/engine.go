package core

import (
	"strings"
	"sync"

	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/ledger"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/internal/session"
	"github.com/sirupsen/logrus"
)

// Engine routes gateway events to the message history, the session registry,
// and the command handlers. It owns all of warden's in-memory state.
type Engine struct {
	config   *Config
	adapter  bot.Adapter
	registry *session.Registry

	deleted     *ledger.Ledger
	edited      *ledger.Ledger
	afk         *ledger.AFKStore
	logChannels *ledger.LogChannels

	commands []*Command
	index    map[string]*Command
	prefix   string

	stop     chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine bound to a platform adapter.
func NewEngine(config *Config, adapter bot.Adapter) *Engine {
	historySize := config.Snipe.HistorySize
	commands := commandTable()

	return &Engine{
		config:      config,
		adapter:     adapter,
		registry:    session.NewRegistry(),
		deleted:     ledger.New(historySize),
		edited:      ledger.New(historySize),
		afk:         ledger.NewAFKStore(),
		logChannels: ledger.NewLogChannels(),
		commands:    commands,
		index:       buildIndex(commands),
		prefix:      config.Command.Prefix,
		stop:        make(chan struct{}),
	}
}

// Run connects the adapter and blocks until Stop is called.
func (e *Engine) Run() error {
	if err := e.adapter.Start(e.HandleEvent); err != nil {
		return err
	}
	logger.WithField("prefix", e.prefix).Info("warden-engine-started")
	<-e.stop
	return nil
}

// Stop shuts the engine down: live sessions are finalized and the gateway
// connection is closed.
func (e *Engine) Stop() error {
	var err error
	e.stopOnce.Do(func() {
		e.registry.Close()
		err = e.adapter.Stop()
		close(e.stop)
	})
	return err
}

// HandleEvent is the adapter's inbound callback. The gateway invokes it from
// its own goroutines; everything downstream owns its locking.
func (e *Engine) HandleEvent(ev bot.Event) {
	switch ev.Kind {
	case bot.EventMessageDeleted:
		e.recordDeletion(ev)
	case bot.EventMessageEdited:
		e.recordEdit(ev)
	case bot.EventComponent:
		if !e.registry.Dispatch(ev) {
			// A click on a frozen or foreign control; nothing owns it.
			logger.WithFields(logrus.Fields{
				"message":   ev.MessageID,
				"component": ev.ComponentID,
			}).Debug("unclaimed-component-interaction")
		}
	case bot.EventMessage:
		// A session awaiting this user's reply gets first claim.
		if e.registry.Dispatch(ev) {
			return
		}
		e.processAfkActivity(ev)
		e.maybeCommand(ev)
	}
}

// recordDeletion appends a deleted message to the channel's history. Empty
// content is still recorded; the renderer substitutes a placeholder.
func (e *Engine) recordDeletion(ev bot.Event) {
	rec := ledger.Record{
		Kind:      ledger.RecordDeleted,
		Author:    ev.Username,
		Content:   ev.Content,
		Timestamp: ev.Timestamp,
	}
	e.deleted.Append(ev.ChannelID, rec)
	e.mirrorMessageEvent(ev, "Message Deleted",
		"**Author:** "+ev.Username+"\n**Channel:** "+bot.ChannelMention(ev.ChannelID)+"\n\n"+displayContent(ev.Content))
}

// recordEdit appends an edit to the channel's history. Edits that did not
// change the content are dropped before they reach the ledger. Whitespace-only
// differences still count as changes.
func (e *Engine) recordEdit(ev bot.Event) {
	if ev.OldContent == ev.Content {
		return
	}
	rec := ledger.Record{
		Kind:       ledger.RecordEdited,
		Author:     ev.Username,
		OldContent: ev.OldContent,
		NewContent: ev.Content,
		Timestamp:  ev.Timestamp,
	}
	e.edited.Append(ev.ChannelID, rec)
	e.mirrorMessageEvent(ev, "Message Edited",
		"**Author:** "+ev.Username+"\n**Channel:** "+bot.ChannelMention(ev.ChannelID)+
			"\n\n**Before:** "+displayContent(ev.OldContent)+"\n**After:** "+displayContent(ev.Content))
}

// maybeCommand parses and runs a prefix command, if the message is one.
func (e *Engine) maybeCommand(ev bot.Event) {
	content := strings.TrimSpace(ev.Content)
	if !strings.HasPrefix(content, e.prefix) || len(content) == len(e.prefix) {
		return
	}

	rest := content[len(e.prefix):]
	name := rest
	args := ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		name = rest[:i]
		args = strings.TrimSpace(rest[i+1:])
	}

	cmd, ok := e.index[strings.ToLower(name)]
	if !ok {
		return
	}

	logger.WithFields(logrus.Fields{
		"command": cmd.Name,
		"guild":   ev.GuildID,
		"channel": ev.ChannelID,
		"user":    ev.UserID,
	}).Info("command-invoked")
	e.mirrorCommand(ev, cmd.Name)

	cmd.Handler(e, Invocation{Event: ev, Args: args})
}

// mirrorMessageEvent copies a delete/edit notice to the guild's message-log
// channel, when one is configured.
func (e *Engine) mirrorMessageEvent(ev bot.Event, title, body string) {
	set, ok := e.logChannels.Get(ev.GuildID)
	if !ok || set.Message == "" {
		return
	}
	e.post(set.Message, bot.View{Title: title, Body: body, Color: bot.ColorOrange})
}

// mirrorCommand copies a command invocation to the guild's command-log
// channel, when one is configured.
func (e *Engine) mirrorCommand(ev bot.Event, name string) {
	set, ok := e.logChannels.Get(ev.GuildID)
	if !ok || set.Command == "" {
		return
	}
	e.post(set.Command, bot.View{
		Title: "Command Used",
		Body: "**Command:** " + name + "\n**User:** " + bot.UserMention(ev.UserID) +
			"\n**Channel:** " + bot.ChannelMention(ev.ChannelID),
		Color: bot.ColorBlurple,
	})
}

// post sends a view, logging failures instead of propagating them.
func (e *Engine) post(channelID string, v bot.View) {
	if _, err := e.adapter.Post(channelID, v); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": channelID,
			"error":   err,
		}).Error("failed-to-post-message")
	}
}

// respondEmbed posts a simple titled embed to the invoking channel.
func (e *Engine) respondEmbed(channelID, title, description string, color int) {
	e.post(channelID, bot.View{Title: title, Body: description, Color: color})
}

// respondText posts a plain-text message to the invoking channel.
func (e *Engine) respondText(channelID, text string) {
	e.post(channelID, bot.View{Plain: text})
}

// displayContent substitutes a placeholder for empty or whitespace-only
// message content.
func displayContent(s string) string {
	if strings.TrimSpace(s) == "" {
		return "*[No content]*"
	}
	return s
}
