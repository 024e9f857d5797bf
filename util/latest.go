package util

import "sync"

// Latest keeps only the most recent value published to it. Publishing never
// blocks; a reader selects on C and then fetches Value.
type Latest[T any] struct {
	mu     sync.Mutex
	value  T
	notify chan struct{}
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{notify: make(chan struct{}, 1)}
}

// Publish replaces the held value and raises the notification if none is
// pending yet.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	l.value = v
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// C delivers at most one pending notification.
func (l *Latest[T]) C() <-chan struct{} {
	return l.notify
}

// Value returns the most recently published value.
func (l *Latest[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Pending reports whether a notification is waiting, without consuming it.
func (l *Latest[T]) Pending() bool {
	return len(l.notify) > 0
}

// Signal is a Latest without a payload: a coalescing wake-up.
type Signal struct {
	notify chan struct{}
}

func NewSignal() *Signal {
	return &Signal{notify: make(chan struct{}, 1)}
}

// Raise wakes one waiter, now or at its next wait.
func (s *Signal) Raise() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Signal) C() <-chan struct{} {
	return s.notify
}
