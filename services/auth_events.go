package services

import (
	"context"
	"sync"
	"time"
)

// AuthEvent is a change in a user's sign-in state.
type AuthEvent string

const (
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

type AuthChange struct {
	Event     AuthEvent `json:"event"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId"`
	At        time.Time `json:"at"`
}

type AuthListener func(ctx context.Context, change AuthChange)

// AuthEvents fans auth changes out to in-process listeners.
type AuthEvents struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]AuthListener
}

func NewAuthEvents() *AuthEvents {
	return &AuthEvents{listeners: make(map[int]AuthListener)}
}

// Subscription is a registered listener.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.remove)
}

func (b *AuthEvents) Subscribe(listener AuthListener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	return &Subscription{remove: func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}}
}

// Emit delivers change to every listener synchronously.
func (b *AuthEvents) Emit(ctx context.Context, change AuthChange) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	b.mu.RLock()
	listeners := make([]AuthListener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, change)
	}
}

// Len returns the number of active listeners.
func (b *AuthEvents) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
