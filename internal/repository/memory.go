package repository

import (
	"context"
	"sort"
	"sync"

	"buyfly/internal/domain"
)

// memoryDeweyRepository is the in-memory catalog used in mock mode and
// as the test double.
type memoryDeweyRepository struct {
	mu    sync.RWMutex
	items map[string]deweyEntry
	seq   uint64
}

// deweyEntry tracks the update order so List sorts the same way the
// Postgres backend does (most recently updated first).
type deweyEntry struct {
	item domain.ProductAnalysis
	seq  uint64
}

func NewMemoryDeweyRepository() DeweyRepository {
	return &memoryDeweyRepository{items: make(map[string]deweyEntry)}
}

func (r *memoryDeweyRepository) Upsert(ctx context.Context, item *domain.ProductAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.items[item.ID] = deweyEntry{item: *item, seq: r.seq}
	return nil
}

func (r *memoryDeweyRepository) FindByID(ctx context.Context, id string) (*domain.ProductAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.items[id]
	if !ok {
		return nil, ErrDeweyItemNotFound
	}
	item := entry.item
	return &item, nil
}

func (r *memoryDeweyRepository) List(ctx context.Context) ([]*domain.ProductAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]deweyEntry, 0, len(r.items))
	for _, entry := range r.items {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].seq != entries[j].seq {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].item.ID < entries[j].item.ID
	})

	items := make([]*domain.ProductAnalysis, 0, len(entries))
	for i := range entries {
		item := entries[i].item
		items = append(items, &item)
	}
	return items, nil
}

type memoryShippingRepository struct {
	mu    sync.Mutex
	items []domain.ShippingItem
}

func NewMemoryShippingRepository(seed ...domain.ShippingItem) ShippingRepository {
	return &memoryShippingRepository{items: append([]domain.ShippingItem(nil), seed...)}
}

func (r *memoryShippingRepository) List(ctx context.Context) ([]domain.ShippingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ShippingItem(nil), r.items...), nil
}

func (r *memoryShippingRepository) Remove(ctx context.Context, id string, platform domain.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, item := range r.items {
		if item.ID == id && item.Platform == platform {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrShippingItemNotFound
}

type memorySalesRepository struct {
	sales []domain.NearbySale
}

func NewMemorySalesRepository(seed ...domain.NearbySale) SalesRepository {
	return &memorySalesRepository{sales: append([]domain.NearbySale(nil), seed...)}
}

func (r *memorySalesRepository) List(ctx context.Context) ([]domain.NearbySale, error) {
	return append([]domain.NearbySale(nil), r.sales...), nil
}
