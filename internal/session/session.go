// Package session implements warden's interactive session engine: ephemeral,
// timeout-bounded state machines driven by gateway events.
//
// A Session owns one rendered message (or one awaited reply), an opaque state
// blob, a predicate selecting its next qualifying event, and a transition
// function. The Registry holds every live session, guarantees a single owner
// per render target, serializes event delivery per session, and expires
// sessions from one deadline heap instead of per-session timers.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/logger"
	"github.com/sirupsen/logrus"
)

// Step is a transition function's verdict.
type Step int

const (
	// Continue keeps the session active and re-renders from the new state.
	Continue Step = iota
	// Ignore consumes the event without changing state or re-rendering,
	// used for clamped navigation at a range end.
	Ignore
	// Done ends the session normally; the transition has already produced
	// any closing render it wants.
	Done
	// Failed ends the session after a side-effect failure; the transition
	// has already rendered the failure to the user.
	Failed
)

// CloseReason says which exit path tore a session down.
type CloseReason int

const (
	// ClosedCompleted: the transition returned Done.
	ClosedCompleted CloseReason = iota
	// ClosedExpired: the deadline elapsed with no accepted event.
	ClosedExpired
	// ClosedEvicted: a newer session claimed the same render target.
	ClosedEvicted
	// ClosedFailed: the transition returned Failed, or a render failed.
	ClosedFailed
)

func (r CloseReason) String() string {
	switch r {
	case ClosedCompleted:
		return "completed"
	case ClosedExpired:
		return "expired"
	case ClosedEvicted:
		return "evicted"
	case ClosedFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is one ephemeral interactive exchange with a single user over a
// single render target. The zero value is not usable; fill the exported
// fields and hand it to Registry.Register.
type Session struct {
	// Key identifies the render target this session owns exclusively:
	// the rendered message's ID, or a ReplyKey for awaited replies.
	Key string

	// UserID is the only user whose events this session may consume.
	UserID string

	// State is opaque to the engine and owned by the handler's transition.
	State any

	// Predicate decides whether an event already routed to this session's
	// key qualifies as its next input. Must be pure. A nil predicate
	// accepts only events from UserID.
	Predicate func(ev bot.Event) bool

	// Transition applies a qualifying event to the state.
	Transition func(state any, ev bot.Event) (any, Step)

	// Render draws the current state. active is false exactly once, for
	// the final render after deadline expiry, so controls can be disabled.
	Render func(state any, active bool) error

	// OnClose, if set, runs once on whichever exit path ends the session.
	OnClose func(reason CloseReason)

	// TTL is the session's lifetime. RefreshOnEvent restarts it on every
	// accepted event, turning it into an inactivity window.
	TTL            time.Duration
	RefreshOnEvent bool

	id       uuid.UUID
	deadline time.Time

	mu     sync.Mutex
	closed bool

	heapIndex int
}

// ID returns the session's identity token. Ownership checks in the registry
// compare IDs, never just keys.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Deadline returns the absolute time the session expires.
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// ReplyKey builds the render-target key for a session awaiting a reply
// message rather than a button click.
func ReplyKey(channelID, userID string) string {
	return channelID + "/" + userID
}

// qualifies applies the author restriction plus the handler's predicate.
func (s *Session) qualifies(ev bot.Event) bool {
	if ev.UserID != s.UserID {
		return false
	}
	if s.Predicate == nil {
		return true
	}
	return s.Predicate(ev)
}

// deliver runs one qualifying-candidate event through the session. It holds
// the session mutex for the whole step so transitions and renders are
// strictly serialized per session. Returns whether the event was consumed.
func (s *Session) deliver(r *Registry, ev bot.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if !s.qualifies(ev) {
		return false
	}

	next, step := s.Transition(s.State, ev)
	switch step {
	case Ignore:
		return true
	case Continue:
		s.State = next
		if s.RefreshOnEvent && s.TTL > 0 {
			r.refresh(s)
		}
		if s.Render != nil {
			if err := s.Render(s.State, true); err != nil {
				logger.WithFields(logrus.Fields{
					"session": s.id,
					"key":     s.Key,
					"error":   err,
				}).Error("session-render-failed")
				s.closeLocked(r, ClosedFailed)
			}
		}
		return true
	case Done:
		s.State = next
		s.closeLocked(r, ClosedCompleted)
		return true
	case Failed:
		s.State = next
		s.closeLocked(r, ClosedFailed)
		return true
	default:
		logger.WithField("step", int(step)).Error("session-transition-returned-unknown-step")
		s.closeLocked(r, ClosedFailed)
		return true
	}
}

// closeLocked tears the session down from inside deliver. Callers hold s.mu.
func (s *Session) closeLocked(r *Registry, reason CloseReason) {
	s.closed = true
	r.remove(s)
	if s.OnClose != nil {
		s.OnClose(reason)
	}
	logger.WithFields(logrus.Fields{
		"session": s.id,
		"key":     s.Key,
		"reason":  reason.String(),
	}).Debug("session-closed")
}

// finalize ends the session from outside an event delivery (expiry or
// eviction). Exactly one of finalize and a terminal deliver step wins; the
// closed flag under s.mu is the arbiter.
func (s *Session) finalize(reason CloseReason) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	state := s.State
	s.mu.Unlock()

	if reason == ClosedExpired && s.Render != nil {
		// Freeze the UI: same state, controls disabled.
		if err := s.Render(state, false); err != nil {
			logger.WithFields(logrus.Fields{
				"session": s.id,
				"key":     s.Key,
				"error":   err,
			}).Warn("session-expiry-render-failed")
		}
	}
	if s.OnClose != nil {
		s.OnClose(reason)
	}
	logger.WithFields(logrus.Fields{
		"session": s.id,
		"key":     s.Key,
		"reason":  reason.String(),
	}).Debug("session-closed")
}
