package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestChannelMentions tests extraction order and duplicate handling
func TestChannelMentions(t *testing.T) {
	assert.Equal(t, []string{"111", "222", "333"},
		ChannelMentions("logs go to <#111> then <#222> then <#333>"))

	// Positional assignment keeps duplicates.
	assert.Equal(t, []string{"111", "111"},
		ChannelMentions("<#111> <#111>"))

	assert.Nil(t, ChannelMentions("no mentions here"))
	assert.Nil(t, ChannelMentions("<#notanid>"))
	assert.Nil(t, ChannelMentions(""))
}

// TestMentionRendering tests the outbound mention formats
func TestMentionRendering(t *testing.T) {
	assert.Equal(t, "<@123>", UserMention("123"))
	assert.Equal(t, "<#456>", ChannelMention("456"))
}

// TestMaskSecret tests token masking for logs
func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd****wxyz", maskSecret("abcdefghijklmnopqrstuvwxyz"))
}

// TestViewDisabled tests the frozen-copy helper
func TestViewDisabled(t *testing.T) {
	v := View{
		Title: "Browser",
		Controls: []Control{
			{ID: "left", Disabled: true},
			{ID: "right", Disabled: false},
		},
	}

	frozen := v.Disabled()
	for _, c := range frozen.Controls {
		assert.True(t, c.Disabled)
	}

	// The original is untouched.
	assert.False(t, v.Controls[1].Disabled)
}
