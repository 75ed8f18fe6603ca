package cart

import "sync"

// Store keeps carts keyed by session ID. Access is read-modify-write scoped
// to a single request: Load hands out a copy, Save writes it back, so no
// caller ever holds a reference into the map.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Load returns a copy of the session's cart, lazily initialized to the
// empty cart for first-time visitors.
func (s *Store) Load(sessionID string) *Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.carts[sessionID]; ok {
		return c.clone()
	}
	return &Cart{Items: []Item{}}
}

// Save stores the cart for the session.
func (s *Store) Save(sessionID string, c *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = c.clone()
}

// Clear drops the session's cart, as happens after order confirmation.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
