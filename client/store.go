package client

import "sync"

// Store holds the current State and runs every dispatched action through
// the reducer. Dispatch is the only way state changes, so data flows one
// direction: API call, action, reducer, new state, subscribers.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers []func(State)
}

// NewStore creates a store with the given initial state.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces the action into the state and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to run after every dispatch with the new state.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
