package ledger

import "sync"

// LogChannelSet is the trio of channels a guild routes its logs to.
type LogChannelSet struct {
	Command string
	Message string
	Action  string
}

// LogChannels maps guild IDs to their configured log channels. Assignments
// overwrite; there is no removal, a guild reruns setup to change channels.
type LogChannels struct {
	mu   sync.RWMutex
	sets map[string]LogChannelSet
}

// NewLogChannels creates an empty log-channel registry.
func NewLogChannels() *LogChannels {
	return &LogChannels{sets: make(map[string]LogChannelSet)}
}

// Set assigns a guild's log channels.
func (l *LogChannels) Set(guildID string, set LogChannelSet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets[guildID] = set
}

// Get returns a guild's log channels, if configured.
func (l *LogChannels) Get(guildID string) (LogChannelSet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	set, ok := l.sets[guildID]
	return set, ok
}
