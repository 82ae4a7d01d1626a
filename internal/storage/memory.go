package storage

import (
	"context"
	"sync"

	"github.com/nikolayk812/gomarket-cart/internal/port"
)

type memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() port.KeyValueStore {
	return &memory{
		items: make(map[string][]byte),
	}
}

func (m *memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (m *memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = clone(value)
	return nil
}

func (m *memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.items[key]
	delete(m.items, key)
	return ok, nil
}

func (m *memory) Close() error {
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
