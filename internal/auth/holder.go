// Package auth owns the client's "who is logged in" state and broadcasts
// every authenticated/anonymous transition to its subscribers.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/bem92/yoga-app/internal/client"
)

// ErrInvalidIdentity is returned by LogIn for a missing or partially
// populated identity record.
var ErrInvalidIdentity = errors.New("auth: identity record is not fully populated")

// ErrClosed is returned by Next once the subscription is closed.
var ErrClosed = errors.New("auth: subscription closed")

// Holder is the single owner of the current identity. It is safe for
// concurrent use.
type Holder struct {
	mu       sync.Mutex
	identity *client.SessionInformation
	subs     map[*Subscription]struct{}
}

// NewHolder returns an anonymous holder.
func NewHolder() *Holder {
	return &Holder{subs: make(map[*Subscription]struct{})}
}

// LogIn stores the identity and emits true.
func (h *Holder) LogIn(identity *client.SessionInformation) error {
	if identity == nil || !identity.Valid() {
		return ErrInvalidIdentity
	}
	stored := *identity

	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = &stored
	h.emit(true)
	return nil
}

// LogOut clears the identity and emits false, even when already anonymous.
func (h *Holder) LogOut() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = nil
	h.emit(false)
}

// IsLogged reports whether an identity is currently held.
func (h *Holder) IsLogged() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.identity != nil
}

// Identity returns a copy of the current identity; ok is false when
// anonymous.
func (h *Holder) Identity() (identity client.SessionInformation, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return client.SessionInformation{}, false
	}
	return *h.identity, true
}

// Token returns the current bearer credential or "".
func (h *Holder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return ""
	}
	return h.identity.Token
}

// Subscribe opens a new authenticated stream. Its first value is the state
// at the time of the call.
func (h *Holder) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Subscription{
		holder: h,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.push(h.identity != nil)
	h.subs[s] = struct{}{}
	return s
}

// emit queues v on every subscription. The caller must hold h.mu so that
// transitions are queued in the order they happened.
func (h *Holder) emit(v bool) {
	for s := range h.subs {
		s.push(v)
	}
}

func (h *Holder) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
}

// Subscription is one independent reader of the authenticated stream.
// Values are buffered without bound, so a slow reader never loses or
// merges transitions.
type Subscription struct {
	holder *Holder

	mu     sync.Mutex
	queue  []bool
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) push(v bool) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until the next value is available, the context is done, or
// the subscription is closed.
func (s *Subscription) Next(ctx context.Context) (bool, error) {
	for {
		select {
		case <-s.done:
			return false, ErrClosed
		default:
		}

		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, nil
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-s.done:
			return false, ErrClosed
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Pending returns the number of values queued but not yet read.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close detaches the subscription from the holder. Queued values are
// discarded.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.holder.unsubscribe(s)
		close(s.done)
	})
}
