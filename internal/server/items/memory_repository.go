package items

import (
	"context"
	"sync"

	"gallerykeeper/internal/shared"
)

// MemoryRepository keeps items in a mutex-guarded map. It backs tests and
// local development; nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]Item)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sortNewestFirst(items)
	return items, nil
}

func (r *MemoryRepository) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {
	item := NewItem(req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item

	return item, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return shared.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}
