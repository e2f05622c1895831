// Package ledger holds warden's in-memory per-key state: the bounded
// most-recent-first message history behind snipe/editsnipe, the per-user AFK
// statuses, and the per-guild log-channel assignments.
//
// All state here is volatile by design; nothing survives a restart. Every
// type owns its own locking and is safe for concurrent use from the gateway's
// event goroutines.
package ledger

import (
	"sync"
	"time"
)

// RecordKind tags a Record as a deletion or an edit.
type RecordKind int

const (
	RecordDeleted RecordKind = iota
	RecordEdited
)

// Record is one entry in a channel's history. Deletions populate Content;
// edits populate OldContent and NewContent.
type Record struct {
	Kind       RecordKind
	Author     string
	Content    string
	OldContent string
	NewContent string
	Timestamp  time.Time
}

// Ledger is a fixed-capacity, most-recent-first history keyed by channel.
// Appends at capacity evict the oldest entry. Ordering follows insertion
// time, not event timestamps: a late-delivered event still lands at the
// front.
type Ledger struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string][]Record
}

// New creates a ledger keeping at most capacity records per key.
func New(capacity int) *Ledger {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger{
		capacity: capacity,
		entries:  make(map[string][]Record),
	}
}

// Capacity returns the per-key record limit.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// Append inserts rec at the front of key's history, creating the history if
// absent and evicting from the back once capacity is exceeded.
func (l *Ledger) Append(key string, rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.entries[key]
	next := make([]Record, 0, len(current)+1)
	next = append(next, rec)
	next = append(next, current...)
	if len(next) > l.capacity {
		next = next[:l.capacity]
	}
	l.entries[key] = next
}

// Snapshot returns a point-in-time copy of key's history, most recent first.
// A missing key yields an empty slice. Later appends never mutate a returned
// snapshot.
func (l *Ledger) Snapshot(key string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	current := l.entries[key]
	out := make([]Record, len(current))
	copy(out, current)
	return out
}

// Len returns the number of records currently held for key.
func (l *Ledger) Len(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries[key])
}
