package clothes

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type MemStore struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemStore() *MemStore {
	return &MemStore{items: make([]Item, 0, 16)}
}

func (s *MemStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemStore) Insert(ctx context.Context, it Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it.ID = uuid.NewString()
	s.items = append(s.items, it)
	return nil
}

func (s *MemStore) FindAll(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return false, nil
	}
	s.items[i].Price = price
	return true, nil
}

func (s *MemStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, nil
}

// indexOf must be called with mu held.
func (s *MemStore) indexOf(name string) int {
	for i, it := range s.items {
		if it.Name == name {
			return i
		}
	}
	return -1
}
