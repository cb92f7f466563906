// Package mailbox provides a single-slot, latest-wins handoff between goroutines.
package mailbox

import "sync"

// Mailbox holds at most one pending value. Put overwrites it; a reader
// only ever sees the most recent one.
type Mailbox[T any] struct {
	mu     sync.Mutex
	val    *T
	notify chan struct{}
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores v, replacing any pending value. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.val = &v
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// TryTake returns the pending value and clears the slot, or nil.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.val
	m.val = nil
	return v
}

// Ready is signalled after Put. A receive does not consume the value.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.notify
}

func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val != nil
}
