package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryArea is an in-memory Area intended for tests and examples.
type MemoryArea struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryArea() *MemoryArea {
	return &MemoryArea{records: map[string][]byte{}}
}

func (a *MemoryArea) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	a.mu.RLock()
	value, ok := a.records[key]
	a.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(value), true, nil
}

func (a *MemoryArea) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	a.records[key] = slices.Clone(value)
	a.mu.Unlock()
	return nil
}

func (a *MemoryArea) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	for _, key := range keys {
		delete(a.records, key)
	}
	a.mu.Unlock()
	return nil
}

// Keys returns the stored keys sorted alphabetically.
func (a *MemoryArea) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.records))
}
