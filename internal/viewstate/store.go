// Package viewstate holds the observable state primitives shared by screen controllers.
package viewstate

import "sync"

// Store owns one screen's state. Every change replaces the whole snapshot under a
// lock, so readers and subscribers never observe a half-applied update.
// State values must be treated as immutable: replace slices, never mutate them.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	subs   map[int]chan S
	nextID int
}

// NewStore creates a store holding initial
func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{
		state: initial,
		subs:  make(map[int]chan S),
	}
}

// Get returns the current snapshot
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn to the current snapshot and publishes the result
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fn(s.state)
	s.publish()
	return s.state
}

// UpdateIf applies fn only when cond still holds. cond runs under the store lock,
// so a result that went stale while in flight cannot slip in after a newer one.
func (s *Store[S]) UpdateIf(cond func() bool, fn func(S) S) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !cond() {
		return false
	}
	s.state = fn(s.state)
	s.publish()
	return true
}

// Subscribe returns a channel receiving every new snapshot, starting with the
// current one. A slow reader only misses intermediate snapshots; the latest is
// always delivered. Call cancel to unsubscribe.
func (s *Store[S]) Subscribe(buffer int) (<-chan S, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan S, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store[S]) publish() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
			continue
		default:
		}
		// full: drop the oldest snapshot so the newest gets in
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.state:
		default:
		}
	}
}
