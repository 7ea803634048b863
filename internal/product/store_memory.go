package product

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps products in insertion order. Ids come from a counter that
// only grows, so an id is never handed out twice by the same store.
type MemStore struct {
	mu     sync.RWMutex
	items  []Product
	nextID int64
}

func NewMemStore() *MemStore {
	return NewMemStoreWith(SeedProducts())
}

func NewMemStoreWith(seed []Product) *MemStore {
	s := &MemStore{
		items:  slices.Clone(seed),
		nextID: 1,
	}
	for _, p := range seed {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}
	return s.items[i], true, nil
}

func (s *MemStore) Create(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.items = append(s.items, p)
	return p, nil
}

func (s *MemStore) Replace(ctx context.Context, id int64, p Product) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}

	p.ID = id
	s.items[i] = p
	return p, true, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}

	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return removed, true, nil
}

// indexOf must be called with s.mu held.
func (s *MemStore) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(p Product) bool { return p.ID == id })
}
