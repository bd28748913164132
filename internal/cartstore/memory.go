package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	domcart "example.com/glowshop/internal/domain/cart"
)

// MemoryStore backs tests and local runs without Redis. Snapshots pass
// through JSON the same way the Redis store's do, so serialization bugs
// surface here too.
type MemoryStore struct {
	mu     sync.Mutex
	carts  map[string][]byte
	claims map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:  make(map[string][]byte),
		claims: make(map[string]bool),
	}
}

func (s *MemoryStore) Load(ctx context.Context, token string) (*domcart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.carts[token]
	if !ok {
		return domcart.New(), nil
	}
	cart := domcart.New()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return cart, nil
}

func (s *MemoryStore) Save(ctx context.Context, token string, cart *domcart.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[token] = data
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, token)
	return nil
}

func (s *MemoryStore) Claim(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims[sessionID] {
		return false, nil
	}
	s.claims[sessionID] = true
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, sessionID)
	return nil
}
