package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Item is an opaque record fetched from an item source.
type Item map[string]any

// ItemFetcher loads a single item by id.
type ItemFetcher interface {
	FetchItem(ctx context.Context, id string) (Item, error)
}

// FetcherFunc adapts a function to ItemFetcher.
type FetcherFunc func(ctx context.Context, id string) (Item, error)

// FetchItem implements ItemFetcher.
func (f FetcherFunc) FetchItem(ctx context.Context, id string) (Item, error) {
	return f(ctx, id)
}

// Subscriber is notified after every committed mutation with a copy of the
// resulting state.
type Subscriber func(m Mutation, state State)

// Store holds the application state for one app instance.
// All writes go through Commit.
type Store struct {
	mu      sync.RWMutex
	state   State
	fetcher ItemFetcher
	logger  *slog.Logger

	subMu   sync.Mutex
	subs    map[uint64]Subscriber
	subSeq  uint64
	subKeys []uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for commit tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithInitialState seeds the store. The state is copied.
func WithInitialState(state State) Option {
	return func(s *Store) {
		s.state = state.clone()
	}
}

// New creates a store with the default state {items: {}}.
func New(fetcher ItemFetcher, opts ...Option) *Store {
	s := &Store{
		state:   State{Items: make(map[string]Item)},
		fetcher: fetcher,
		subs:    make(map[uint64]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Commit applies a mutation. Mutations are applied one at a time under the
// store lock; subscribers run after the lock is released.
func (s *Store) Commit(m Mutation) {
	if m == nil {
		return
	}

	s.mu.Lock()
	m.apply(&s.state)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.logger.Debug("store commit", "mutation", m.Type())
	s.notify(m, snapshot)
}

// SetItem commits a SetItem mutation.
func (s *Store) SetItem(id string, item Item) {
	s.Commit(SetItem{ID: id, Item: item})
}

// FetchItem fetches an item and commits it under id. The fetch error is
// returned as-is and nothing is committed.
func (s *Store) FetchItem(ctx context.Context, id string) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}
	item, err := s.fetcher.FetchItem(ctx, id)
	if err != nil {
		return err
	}
	s.Commit(SetItem{ID: id, Item: item})
	return nil
}

// ReplaceState swaps the whole state. Nothing of the previous state survives.
func (s *Store) ReplaceState(state State) {
	s.Commit(replaceState{state: state.clone()})
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Item returns the item stored under id.
func (s *Store) Item(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.state.Items[id]
	if !ok {
		return nil, false
	}
	return cloneItem(item), true
}

// Route returns the projected router state, if any.
func (s *Store) Route() *RouteState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Route.clone()
}

// Subscribe registers fn to run after each commit.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	s.subSeq++
	key := s.subSeq
	s.subs[key] = fn
	s.subKeys = append(s.subKeys, key)
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, key)
		for i, k := range s.subKeys {
			if k == key {
				s.subKeys = append(s.subKeys[:i], s.subKeys[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) notify(m Mutation, state State) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subKeys))
	for _, k := range s.subKeys {
		subs = append(subs, s.subs[k])
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(m, state)
	}
}

// MarshalJSON serializes the current state snapshot.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.State())
}
