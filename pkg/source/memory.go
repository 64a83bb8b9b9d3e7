package source

import (
	"context"
	"sync"

	"github.com/vango-dev/ssr/pkg/store"
)

// Memory serves items from a map. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]store.Item
}

// NewMemory returns a source seeded with items. The map is copied.
func NewMemory(items map[string]store.Item) *Memory {
	m := &Memory{items: make(map[string]store.Item, len(items))}
	for id, it := range items {
		m.items[id] = it
	}
	return m
}

// Put adds or replaces an item.
func (m *Memory) Put(id string, item store.Item) {
	m.mu.Lock()
	m.items[id] = item
	m.mu.Unlock()
}

// FetchItem implements store.ItemFetcher.
func (m *Memory) FetchItem(ctx context.Context, id string) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	item, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	out := make(store.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out, nil
}
