package ledger

import (
	"sync"
	"time"
)

// AFKStatus is a user's away marker.
type AFKStatus struct {
	Reason string
	Since  time.Time
}

// AFKStore maps user IDs to their AFK status. It is the capacity-1 variant of
// the per-key history: setting overwrites, and the status is cleared the next
// time its owner is active.
type AFKStore struct {
	mu       sync.RWMutex
	statuses map[string]AFKStatus
}

// NewAFKStore creates an empty AFK store.
func NewAFKStore() *AFKStore {
	return &AFKStore{statuses: make(map[string]AFKStatus)}
}

// Set marks a user as AFK with the given reason, overwriting any prior
// status.
func (s *AFKStore) Set(userID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = AFKStatus{Reason: reason, Since: time.Now().UTC()}
}

// Get returns a user's AFK status without clearing it.
func (s *AFKStore) Get(userID string) (AFKStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[userID]
	return st, ok
}

// Clear removes a user's AFK status and returns what was stored. Used when
// the user sends a message, which ends their away period.
func (s *AFKStore) Clear(userID string) (AFKStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[userID]
	if ok {
		delete(s.statuses, userID)
	}
	return st, ok
}
