package store

import (
	"context"
	"sync"

	"github.com/spec-kit/revdup-client/internal/domain"
)

// Durable key names, shared by every store implementation.
const (
	KeyAuthToken = "auth_token"
	KeyUserRole  = "user_role"
)

// SessionStore is durable key-value persistence for the current session.
// Token and role form one record: Write sets both, Clear removes both. A
// store must never expose a half-written pair.
type SessionStore interface {
	// Read returns the persisted session, or the zero Session when absent.
	Read(ctx context.Context) (domain.Session, error)
	// Write durably persists the token/role pair. Token and role must both
	// be non-empty.
	Write(ctx context.Context, token string, role domain.Role) error
	// Clear removes the token and the role as one logical operation. Clearing
	// an absent session is a no-op.
	Clear(ctx context.Context) error
	// Watch subscribes to future session changes. The returned cancel func
	// releases the subscription; the channel is closed on cancel.
	Watch() (<-chan domain.Session, func())
}

// watchHub fans session changes out to subscribers. Sends never block: a
// subscriber that has not drained its buffer sees only the latest value.
type watchHub struct {
	mu   sync.Mutex
	subs map[int]chan domain.Session
	next int
}

func (h *watchHub) Watch() (<-chan domain.Session, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]chan domain.Session)
	}
	id := h.next
	h.next++
	ch := make(chan domain.Session, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (h *watchHub) publish(sess domain.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- sess:
		default:
			// Drop the stale value so the latest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- sess
		}
	}
}
