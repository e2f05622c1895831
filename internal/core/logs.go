package core

import (
	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/ledger"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/internal/session"
	"github.com/modfox/warden/pkg/constants"
	"github.com/sirupsen/logrus"
)

// handleLogs runs the two-step log-channel setup: a yes/no button prompt,
// then — if the admin already has channels — a wait for one reply mentioning
// exactly three channels in command/message/action order.
func handleLogs(e *Engine, inv Invocation) {
	ev := inv.Event
	if !e.requireGuild(ev) {
		return
	}
	if !e.checkPermission(ev, bot.PermAdministrator, "Only administrators can set up logging.") {
		return
	}

	messageID, err := e.adapter.Post(ev.ChannelID, logsPromptView(true))
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": ev.ChannelID,
			"error":   err,
		}).Error("failed-to-post-logs-setup")
		return
	}

	e.registry.Register(&session.Session{
		Key:    messageID,
		UserID: ev.UserID,
		TTL:    constants.LogsConfirmTimeout,
		Predicate: func(in bot.Event) bool {
			return in.Kind == bot.EventComponent &&
				(in.ComponentID == "logs_yes" || in.ComponentID == "logs_no")
		},
		Transition: func(_ any, in bot.Event) (any, session.Step) {
			if in.ComponentID == "logs_no" {
				return nil, e.createLogChannels(ev, messageID)
			}
			return nil, e.promptForLogChannels(ev, messageID)
		},
		Render: func(_ any, active bool) error {
			return e.adapter.Update(ev.ChannelID, messageID, logsPromptView(active))
		},
	})
}

func logsPromptView(active bool) bot.View {
	return bot.View{
		Title: "Logs Setup",
		Body:  "Do you already have channels for logs?",
		Color: bot.ColorBlurple,
		Controls: []bot.Control{
			{ID: "logs_yes", Label: "Yes", Style: bot.StyleSuccess, Disabled: !active},
			{ID: "logs_no", Label: "No", Style: bot.StyleDanger, Disabled: !active},
		},
	}
}

// createLogChannels provisions the three private log channels and stores the
// assignment. A platform failure ends the session in its error terminal with
// a visible render.
func (e *Engine) createLogChannels(ev bot.Event, messageID string) session.Step {
	names := [constants.LogChannelCount]string{"command-logs", "message-logs", "action-logs"}
	topics := [constants.LogChannelCount]string{
		"Command logs created by warden",
		"Message logs created by warden",
		"Action logs created by warden",
	}

	var ids [constants.LogChannelCount]string
	for i := range names {
		id, err := e.adapter.CreatePrivateChannel(ev.GuildID, names[i], topics[i])
		if err != nil {
			logger.WithFields(logrus.Fields{
				"guild":   ev.GuildID,
				"channel": names[i],
				"error":   err,
			}).Error("log-channel-creation-failed")
			e.updateView(ev.ChannelID, messageID, bot.View{
				Title: "Logs Setup Failed",
				Body:  "Could not create the log channels. Check the bot's permissions and try again.",
				Color: bot.ColorRed,
			})
			return session.Failed
		}
		ids[i] = id
	}

	e.logChannels.Set(ev.GuildID, ledger.LogChannelSet{
		Command: ids[0],
		Message: ids[1],
		Action:  ids[2],
	})

	e.updateView(ev.ChannelID, messageID, bot.View{
		Title: "Logs Setup Complete",
		Body: "Log channels have been created:\n- " + bot.ChannelMention(ids[0]) + " (Command Logs)\n- " +
			bot.ChannelMention(ids[1]) + " (Message Logs)\n- " + bot.ChannelMention(ids[2]) + " (Action Logs)",
		Color: bot.ColorGreen,
	})
	return session.Done
}

// promptForLogChannels replaces the setup message with mention instructions
// and chains the second session: a wait for one reply from the same user
// carrying exactly three channel references.
func (e *Engine) promptForLogChannels(ev bot.Event, messageID string) session.Step {
	e.updateView(ev.ChannelID, messageID, bot.View{
		Title: "Logs Setup",
		Body: "Please mention the channels in the following order (all in one message):\n" +
			"1. Command Log\n2. Message Log\n3. Action Log",
		Color: bot.ColorBlurple,
	})

	e.registry.Register(&session.Session{
		Key:    session.ReplyKey(ev.ChannelID, ev.UserID),
		UserID: ev.UserID,
		TTL:    constants.LogsMentionTimeout,
		Predicate: func(in bot.Event) bool {
			return in.Kind == bot.EventMessage &&
				len(in.MentionedChannels) == constants.LogChannelCount
		},
		Transition: func(_ any, in bot.Event) (any, session.Step) {
			mentioned := in.MentionedChannels
			e.logChannels.Set(ev.GuildID, ledger.LogChannelSet{
				Command: mentioned[0],
				Message: mentioned[1],
				Action:  mentioned[2],
			})
			e.post(ev.ChannelID, bot.View{
				Title: "Logs Setup Complete",
				Body: "Log channels have been assigned:\n- " + bot.ChannelMention(mentioned[0]) + " (Command Logs)\n- " +
					bot.ChannelMention(mentioned[1]) + " (Message Logs)\n- " + bot.ChannelMention(mentioned[2]) + " (Action Logs)",
				Color: bot.ColorGreen,
			})
			return nil, session.Done
		},
		OnClose: func(reason session.CloseReason) {
			if reason == session.ClosedExpired {
				e.respondText(ev.ChannelID, "Timed out waiting for channel mentions.")
			}
		},
	})
	return session.Done
}

// updateView edits a message, logging failures instead of propagating them.
func (e *Engine) updateView(channelID, messageID string, v bot.View) {
	if err := e.adapter.Update(channelID, messageID, v); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": channelID,
			"message": messageID,
			"error":   err,
		}).Error("failed-to-update-message")
	}
}
