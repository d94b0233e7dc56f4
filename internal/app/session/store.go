package session

import (
	"sync"

	"go.uber.org/zap"
)

// Store holds the live state of one session and serializes event
// application. Subscribers are notified after every transition.
type Store struct {
	logger *zap.Logger

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// NewStore creates a store seeded with the initial state.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger: logger,
		state:  NewState(),
	}
}

// Dispatch applies an event and notifies subscribers with the new state.
func (st *Store) Dispatch(e Event) State {
	st.mu.Lock()
	st.state = Apply(st.state, e)
	next := st.state
	subs := st.subs
	st.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// State returns a snapshot of the current state.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Subscribe registers a callback invoked after every dispatch. Callbacks
// run outside the store lock; they may dispatch further events.
func (st *Store) Subscribe(fn func(State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
}
