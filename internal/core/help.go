package core

import (
	"fmt"
	"sort"

	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/logger"
	"github.com/modfox/warden/internal/session"
	"github.com/modfox/warden/pkg/constants"
	"github.com/sirupsen/logrus"
)

// helpCategory is one group of commands in the help browser.
type helpCategory struct {
	Name     string
	Commands []*Command
}

// helpCategories groups the command table by category, both axes sorted
// alphabetically.
func helpCategories(commands []*Command) []helpCategory {
	byName := make(map[string][]*Command)
	for _, cmd := range commands {
		byName[cmd.Category] = append(byName[cmd.Category], cmd)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]helpCategory, 0, len(names))
	for _, name := range names {
		cmds := byName[name]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		out = append(out, helpCategory{Name: name, Commands: cmds})
	}
	return out
}

// handleHelp opens the two-axis help browser: categories on one axis, pages
// within a category on the other. Changing category returns to the first
// page. The session stays alive as long as the user keeps clicking.
func handleHelp(e *Engine, inv Invocation) {
	ev := inv.Event
	categories := helpCategories(e.commands)

	counts := make([]int, len(categories))
	for i, cat := range categories {
		counts[i] = len(cat.Commands)
	}
	state := session.NewPages(counts, constants.CommandsPerPage)

	messageID, err := e.adapter.Post(ev.ChannelID, helpView(e.prefix, categories, state, true))
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": ev.ChannelID,
			"error":   err,
		}).Error("failed-to-post-help-browser")
		return
	}

	e.registry.Register(&session.Session{
		Key:            messageID,
		UserID:         ev.UserID,
		State:          state,
		TTL:            constants.HelpSessionTimeout,
		RefreshOnEvent: true,
		Predicate: func(in bot.Event) bool {
			if in.Kind != bot.EventComponent {
				return false
			}
			switch in.ComponentID {
			case "cat_prev", "cat_next", "help_prev", "help_next":
				return true
			}
			return false
		},
		Transition: func(st any, in bot.Event) (any, session.Step) {
			p := st.(session.Pages)
			var next session.Pages
			switch in.ComponentID {
			case "cat_prev":
				next = p.PrevCategory()
			case "cat_next":
				next = p.NextCategory()
			case "help_prev":
				next = p.PrevPage()
			case "help_next":
				next = p.NextPage()
			default:
				return p, session.Ignore
			}
			if next.Category == p.Category && next.Page == p.Page {
				return p, session.Ignore
			}
			return next, session.Continue
		},
		Render: func(st any, active bool) error {
			return e.adapter.Update(ev.ChannelID, messageID,
				helpView(e.prefix, categories, st.(session.Pages), active))
		},
	})
}

// helpView renders one page of one category.
func helpView(prefix string, categories []helpCategory, p session.Pages, active bool) bot.View {
	cat := categories[p.Category]
	start, end := p.PageBounds()

	view := bot.View{
		Title: "📖 " + cat.Name + " Commands",
		Color: bot.ColorBlurple,
		Footer: fmt.Sprintf("Category %d/%d • Page %d/%d • %d commands",
			p.Category+1, p.CategoryCount(), p.Page+1, p.PageCount(), len(cat.Commands)),
	}

	for _, cmd := range cat.Commands[start:end] {
		desc := cmd.Description
		if desc == "" {
			desc = "No description."
		}
		view.Fields = append(view.Fields, bot.Field{
			Name:  prefix + cmd.Name,
			Value: desc + "\n\n**Example:** `" + cmd.Example + "`\n\n───────────────",
		})
	}

	view.Controls = []bot.Control{
		{ID: "cat_prev", Label: "⬆️ Prev Category", Style: bot.StyleSecondary, Disabled: !active || p.AtFirstCategory()},
		{ID: "cat_next", Label: "Next Category ⬇️", Style: bot.StyleSecondary, Disabled: !active || p.AtLastCategory()},
		{ID: "help_prev", Label: "⬅️ Previous", Style: bot.StylePrimary, Disabled: !active || p.AtFirstPage()},
		{ID: "help_next", Label: "Next ➡️", Style: bot.StylePrimary, Disabled: !active || p.AtLastPage()},
	}
	return view
}
