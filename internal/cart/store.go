package cart

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Persister loads and saves the cart list.
type Persister interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Store holds one visitor's cart and keeps it in step with its persister.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	logger    *log.Logger
}

// NewStore rehydrates the cart list. A missing or unreadable record starts an
// empty cart.
func NewStore(ctx context.Context, p Persister, logger *log.Logger) *Store {
	s := &Store{state: State{Items: []Item{}}, persister: p, logger: logger}

	items, err := p.Load(ctx)
	if err != nil {
		logger.Printf("cart: starting empty, could not load saved cart: %v", err)
		return s
	}
	if items != nil {
		s.state.Items = items
	}
	return s
}

// Dispatch applies cmd and persists the list when it changed. If saving fails
// the in-memory state is left as it was.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, cmd)
	if touchesCart(cmd) {
		if err := s.persister.Save(ctx, next.Items); err != nil {
			return s.state.clone(), fmt.Errorf("save cart: %w", err)
		}
	}
	s.state = next
	return s.state.clone(), nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
