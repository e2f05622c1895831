package core

import (
	"fmt"

	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/ledger"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/internal/session"
	"github.com/modfox/warden/pkg/constants"
	"github.com/sirupsen/logrus"
)

func handleSnipe(e *Engine, inv Invocation) {
	e.startSnipe(inv.Event, e.deleted, "snipe")
}

func handleEditSnipe(e *Engine, inv Invocation) {
	e.startSnipe(inv.Event, e.edited, "editsnipe")
}

// startSnipe opens a single-axis browse session over a point-in-time
// snapshot of the channel's history. Later ledger writes do not affect an
// in-progress browse.
func (e *Engine) startSnipe(ev bot.Event, src *ledger.Ledger, name string) {
	records := src.Snapshot(ev.ChannelID)
	if len(records) == 0 {
		e.respondText(ev.ChannelID, "There's nothing to "+name+"!")
		return
	}

	leftID := name + "_left"
	rightID := name + "_right"
	state := session.Browse{Index: 0, Count: len(records)}

	messageID, err := e.adapter.Post(ev.ChannelID, snipeView(records, state, leftID, rightID, true))
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": ev.ChannelID,
			"error":   err,
		}).Error("failed-to-post-snipe-browser")
		return
	}

	e.registry.Register(&session.Session{
		Key:    messageID,
		UserID: ev.UserID,
		State:  state,
		TTL:    constants.SnipeSessionTimeout,
		Predicate: func(in bot.Event) bool {
			return in.Kind == bot.EventComponent &&
				(in.ComponentID == leftID || in.ComponentID == rightID)
		},
		Transition: func(st any, in bot.Event) (any, session.Step) {
			b := st.(session.Browse)
			var next session.Browse
			switch in.ComponentID {
			case leftID:
				next = b.Prev()
			case rightID:
				next = b.Next()
			default:
				return b, session.Ignore
			}
			if next == b {
				// Clamped at a range end; nothing to redraw.
				return b, session.Ignore
			}
			return next, session.Continue
		},
		Render: func(st any, active bool) error {
			return e.adapter.Update(ev.ChannelID, messageID,
				snipeView(records, st.(session.Browse), leftID, rightID, active))
		},
	})
}

// snipeView renders one record of the browse snapshot. Inactive views have
// every control disabled.
func snipeView(records []ledger.Record, b session.Browse, leftID, rightID string, active bool) bot.View {
	rec := records[b.Index]

	var title, body string
	var color int
	switch rec.Kind {
	case ledger.RecordEdited:
		title = fmt.Sprintf("Edited Message #%d", b.Index+1)
		body = "**Author:** " + rec.Author +
			"\n**Time:** " + rec.Timestamp.Local().Format("15:04") +
			"\n\n**Before:** " + displayContent(rec.OldContent) +
			"\n**After:** " + displayContent(rec.NewContent)
		color = bot.ColorBlurple
	default:
		title = fmt.Sprintf("Deleted Message #%d", b.Index+1)
		body = "**Author:** " + rec.Author +
			"\n**Time:** " + rec.Timestamp.Local().Format("15:04") +
			"\n\n" + displayContent(rec.Content)
		color = bot.ColorOrange
	}

	return bot.View{
		Title: title,
		Body:  body,
		Color: color,
		Controls: []bot.Control{
			{ID: leftID, Label: "⬅️", Style: bot.StyleSecondary, Disabled: !active || b.AtStart()},
			{ID: rightID, Label: "➡️", Style: bot.StyleSecondary, Disabled: !active || b.AtEnd()},
		},
	}
}
