// Package observe provides a single-writer state holder that consumers can
// read synchronously or subscribe to.
package observe

import "sync"

// Value holds the latest published state of type T.
//
// Subscribers receive the current value immediately and every value published
// afterwards. Delivery never blocks the publisher: when a subscriber's buffer
// is full the oldest pending value is dropped, so a slow reader always ends up
// on the latest state.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	subs    map[*subscriber[T]]struct{}
	closed  bool
}

type subscriber[T any] struct {
	ch chan T
}

// NewValue creates a holder with the given initial value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[*subscriber[T]]struct{}),
	}
}

// Get returns the last published value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set replaces the current value and notifies subscribers.
// Set after Close updates the current value but notifies nobody.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = next
	v.publishLocked(next)
}

// Update atomically derives the next value from the current one, publishes
// it and returns it.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := fn(v.current)
	v.current = next
	v.publishLocked(next)
	return next
}

// Subscribe registers a subscriber with the given buffer size (minimum 1).
// The returned channel yields the current value first. The cancel function
// unregisters the subscriber and closes the channel; it is safe to call more
// than once. The channel is also closed when the Value is closed.
func (v *Value[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s := &subscriber[T]{ch: make(chan T, buffer)}

	v.mu.Lock()
	s.ch <- v.current
	if v.closed {
		close(s.ch)
		v.mu.Unlock()
		return s.ch, func() {}
	}
	v.subs[s] = struct{}{}
	v.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if _, ok := v.subs[s]; ok {
				delete(v.subs, s)
				close(s.ch)
			}
		})
	}
	return s.ch, cancel
}

// Subscribers returns the number of registered subscribers.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// Close closes every subscriber channel. Further Set calls only update the
// current value.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for s := range v.subs {
		close(s.ch)
		delete(v.subs, s)
	}
}

// publishLocked delivers next to every subscriber. Caller holds v.mu.
func (v *Value[T]) publishLocked(next T) {
	if v.closed {
		return
	}
	for s := range v.subs {
		select {
		case s.ch <- next:
		default:
			// Buffer full: drop the oldest pending value
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- next:
			default:
			}
		}
	}
}
