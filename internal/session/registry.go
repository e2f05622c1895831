package session

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modfox/warden/internal/bot"
	"github.com/modfox/warden/internal/logger"
	"github.com/sirupsen/logrus"
)

// Registry is the process-wide map from render-target keys to the single live
// session owning each. One background goroutine expires sessions from a
// shared deadline heap.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	heap     deadlineHeap

	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewRegistry creates a registry and starts its expiry goroutine.
func NewRegistry() *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

// Close stops the expiry goroutine and finalizes every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	remaining := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		remaining = append(remaining, s)
	}
	r.sessions = make(map[string]*Session)
	r.heap = nil
	r.mu.Unlock()

	close(r.done)
	for _, s := range remaining {
		s.finalize(ClosedEvicted)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Register installs s as the sole owner of its key. Any prior owner is
// finalized (its cleanup runs exactly once) before the caller returns.
// Reports whether an existing session was evicted.
func (r *Registry) Register(s *Session) bool {
	s.id = uuid.New()
	s.heapIndex = -1
	if s.TTL > 0 {
		s.deadline = time.Now().Add(s.TTL)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.finalize(ClosedEvicted)
		return false
	}
	old := r.sessions[s.Key]
	r.sessions[s.Key] = s
	if old != nil && old.heapIndex >= 0 {
		heap.Remove(&r.heap, old.heapIndex)
	}
	if s.TTL > 0 {
		heap.Push(&r.heap, s)
	}
	r.mu.Unlock()
	r.kick()

	if old != nil {
		old.finalize(ClosedEvicted)
		logger.WithFields(logrus.Fields{
			"key":     s.Key,
			"evicted": old.id,
			"session": s.id,
		}).Info("session-superseded")
		return true
	}
	return false
}

// Unregister removes s if it still owns its key. A session that was already
// superseded must not unregister its successor, so the check is by identity.
func (r *Registry) Unregister(s *Session) {
	r.remove(s)
	s.finalize(ClosedCompleted)
}

// Dispatch routes an inbound event to the session owning its render-target
// key, if any. Reports whether the event was consumed.
func (r *Registry) Dispatch(ev bot.Event) bool {
	key := keyFor(ev)
	if key == "" {
		return false
	}

	r.mu.Lock()
	s := r.sessions[key]
	r.mu.Unlock()

	if s == nil {
		return false
	}
	return s.deliver(r, ev)
}

// keyFor derives the render-target key an event addresses: the clicked
// message for component interactions, the channel/author pair for messages.
func keyFor(ev bot.Event) string {
	switch ev.Kind {
	case bot.EventComponent:
		return ev.MessageID
	case bot.EventMessage:
		return ReplyKey(ev.ChannelID, ev.UserID)
	default:
		return ""
	}
}

// remove deletes s from the map and heap if it is still the current owner.
func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[s.Key]; ok && current.id == s.id {
		delete(r.sessions, s.Key)
	}
	if s.heapIndex >= 0 {
		heap.Remove(&r.heap, s.heapIndex)
	}
}

// refresh pushes s's deadline out by its TTL. Called from deliver with s.mu
// held; lock order is always session before registry.
func (r *Registry) refresh(s *Session) {
	r.mu.Lock()
	s.deadline = time.Now().Add(s.TTL)
	if s.heapIndex >= 0 {
		heap.Fix(&r.heap, s.heapIndex)
	}
	r.mu.Unlock()
	r.kick()
}

// kick wakes the expiry goroutine after a heap change.
func (r *Registry) kick() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// run is the expiry loop: sleep until the nearest deadline, pop everything
// due, finalize outside the registry lock.
func (r *Registry) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		r.mu.Lock()
		now := time.Now()
		var expired []*Session
		for r.heap.Len() > 0 && !r.heap[0].deadline.After(now) {
			s := heap.Pop(&r.heap).(*Session)
			if current, ok := r.sessions[s.Key]; ok && current.id == s.id {
				delete(r.sessions, s.Key)
			}
			expired = append(expired, s)
		}
		wait := time.Hour
		if r.heap.Len() > 0 {
			wait = time.Until(r.heap[0].deadline)
		}
		r.mu.Unlock()

		for _, s := range expired {
			s.finalize(ClosedExpired)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
		case <-r.wake:
		case <-r.done:
			return
		}
	}
}

// deadlineHeap is a min-heap of sessions ordered by deadline.
type deadlineHeap []*Session

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}

func (h deadlineHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *deadlineHeap) Push(x any) {
	s := x.(*Session)
	s.heapIndex = len(*h)
	*h = append(*h, s)
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	s.heapIndex = -1
	*h = old[:n-1]
	return s
}
