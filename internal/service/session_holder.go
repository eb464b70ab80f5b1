package service

import (
	"context"
	"sync"
	"sync/atomic"

	"swasth-sathi/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Types
// =============================================================================

// SessionListener is called for every session change. session is nil only
// when the holder cannot attribute the event to an identity.
type SessionListener func(ctx context.Context, event entity.SessionEvent, session *entity.Session)

// SessionHolder fans session changes out to subscribers.
//
// Subscribers register once and keep receiving events until they call the
// returned unsubscribe function or the holder is closed. Listeners run
// synchronously on the publishing goroutine, so they must not block.
type SessionHolder struct {
	log *logrus.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]SessionListener

	closed atomic.Bool
}

// =============================================================================
// Constructor
// =============================================================================

func NewSessionHolder(log *logrus.Logger) *SessionHolder {
	return &SessionHolder{
		log:       log,
		listeners: make(map[uint64]SessionListener),
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Subscribe registers listener and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *SessionHolder) Subscribe(listener SessionListener) (unsubscribe func()) {
	if h.closed.Load() {
		return func() {}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = listener
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers event to every current subscriber. A panicking listener
// is logged and does not stop delivery to the others.
func (h *SessionHolder) Publish(ctx context.Context, event entity.SessionEvent, session *entity.Session) {
	if h.closed.Load() {
		return
	}

	h.mu.RLock()
	snapshot := make([]SessionListener, 0, len(h.listeners))
	for _, l := range h.listeners {
		snapshot = append(snapshot, l)
	}
	h.mu.RUnlock()

	for _, l := range snapshot {
		h.deliver(ctx, l, event, session)
	}
}

// Subscribers returns the number of registered listeners.
func (h *SessionHolder) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close drops every subscriber. Safe to call multiple times.
func (h *SessionHolder) Close() {
	if h.closed.CompareAndSwap(false, true) {
		h.mu.Lock()
		h.listeners = make(map[uint64]SessionListener)
		h.mu.Unlock()
		h.log.Info("SessionHolder closed")
	}
}

// =============================================================================
// Private Methods
// =============================================================================

func (h *SessionHolder) deliver(ctx context.Context, l SessionListener, event entity.SessionEvent, session *entity.Session) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Warnf("Session listener panicked on %s: %v", event, r)
		}
	}()
	l(ctx, event, session)
}
