package bot

// Embed colors used across the bot's responses.
const (
	ColorRed     = 0xED4245
	ColorOrange  = 0xE67E22
	ColorGreen   = 0x57F287
	ColorBlurple = 0x5865F2
)

// ControlStyle maps to the platform's button styles.
type ControlStyle int

const (
	StyleSecondary ControlStyle = iota
	StylePrimary
	StyleSuccess
	StyleDanger
)

// Control is one interactive button attached to a rendered message.
type Control struct {
	ID       string
	Label    string
	Style    ControlStyle
	Disabled bool
}

// Field is a single name/value pair inside an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// View describes one rendered message: either plain text, or an embed with
// optional fields and an ordered row of controls. A session's renderer
// produces a View from its state and nothing else.
type View struct {
	// Plain, when set, posts a plain-text message and all embed fields
	// below are ignored.
	Plain string

	Title        string
	Body         string
	Color        int
	Footer       string
	ThumbnailURL string
	Fields       []Field

	Controls []Control
}

// Disabled returns a copy of the view with every control disabled. Used for
// the final render when a session expires.
func (v View) Disabled() View {
	out := v
	out.Controls = make([]Control, len(v.Controls))
	for i, c := range v.Controls {
		c.Disabled = true
		out.Controls[i] = c
	}
	return out
}
