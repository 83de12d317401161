package session

import (
	"context"
	"sync"
	"time"
)

// Holder owns the live session and is the only place it is written. Every
// write goes copy, mutate, persist, swap: a failed persist leaves the live
// session untouched.
type Holder struct {
	mu      sync.RWMutex
	store   Store
	current Session
	now     func() time.Time
}

// NewHolder loads the stored session into a new Holder.
func NewHolder(ctx context.Context, store Store) (*Holder, error) {
	s, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Holder{store: store, current: s, now: time.Now}, nil
}

// Current returns a copy of the live session.
func (h *Holder) Current() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Authenticated reports whether the live session can make authenticated calls.
func (h *Holder) Authenticated() bool {
	return h.Current().Authenticated(h.now())
}

// Update applies fn to a copy of the live session, persists the copy, and
// only then makes it live.
func (h *Holder) Update(ctx context.Context, fn func(*Session) error) (Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.current
	if err := fn(&next); err != nil {
		return h.current, err
	}
	if err := h.store.Save(ctx, next); err != nil {
		return h.current, err
	}
	h.current = next
	return next, nil
}

// Replace persists s and makes it live.
func (h *Holder) Replace(ctx context.Context, s Session) error {
	_, err := h.Update(ctx, func(cur *Session) error {
		*cur = s
		return nil
	})
	return err
}

// Clear removes the stored session and resets the live one.
func (h *Holder) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Clear(ctx); err != nil {
		return err
	}
	h.current = Session{}
	return nil
}
