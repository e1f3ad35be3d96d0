package session

import (
	"sync"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/types"
)

// Listener receives the new session state after every change. A nil
// session means logged out.
type Listener func(current *types.Session)

// Broadcaster holds the single active session of this process and
// notifies subscribers synchronously, in subscription order, whenever
// it changes. New subscribers do not receive past states.
type Broadcaster struct {
	mu        sync.Mutex
	current   *types.Session
	listeners []Listener
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a listener for future session changes and returns
// an unsubscribe function.
func (b *Broadcaster) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = append(b.listeners, l)
	index := len(b.listeners) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if index < len(b.listeners) {
			b.listeners[index] = nil
		}
	}
}

// Current returns the active session or nil.
func (b *Broadcaster) Current() *types.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Establish replaces the active session and notifies subscribers.
func (b *Broadcaster) Establish(s types.Session) {
	b.set(&s)
}

// Destroy clears the active session and notifies subscribers. Calling
// it while logged out is a no-op and triggers no notification.
func (b *Broadcaster) Destroy() {
	b.mu.Lock()
	if b.current == nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.set(nil)
}

func (b *Broadcaster) set(s *types.Session) {
	b.mu.Lock()
	b.current = s
	// snapshot so listeners can subscribe or unsubscribe from within
	// their callback without deadlocking
	toNotify := make([]Listener, len(b.listeners))
	copy(toNotify, b.listeners)
	b.mu.Unlock()

	for _, l := range toNotify {
		if l != nil {
			l(s)
		}
	}
}
