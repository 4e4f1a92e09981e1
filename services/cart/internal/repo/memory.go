package repo

import (
	"context"
	"sync"

	"github.com/Skotchmaster/vente_shop/services/cart/internal/models"
)

// MemoryStore keeps carts in process. Entries never expire.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[string]models.Line
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]map[string]models.Line{}}
}

func (m *MemoryStore) Lines(_ context.Context, key string) ([]models.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Line, 0, len(m.carts[key]))
	for _, l := range m.carts[key] {
		out = append(out, l)
	}
	SortLines(out)
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, key, field string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cur *models.Line
	if l, ok := m.carts[key][field]; ok {
		cur = &l
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}

	if next == nil {
		delete(m.carts[key], field)
		return nil
	}
	if m.carts[key] == nil {
		m.carts[key] = map[string]models.Line{}
	}
	m.carts[key][field] = *next
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}
