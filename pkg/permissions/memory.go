// Package permissions provides an in-memory host permission source. It keeps
// the origins declared at install time apart from the ones granted later and
// notifies subscribers when granted origins are revoked.
package permissions

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-options-perdomain/pkg/match"
)

// Query narrows a GrantedOrigins lookup.
type Query struct {
	// ExactMatchOnly keeps granted origins that a wider static pattern
	// already covers.
	ExactMatchOnly bool
}

// Memory is a concurrency-safe permission source.
type Memory struct {
	mu       sync.RWMutex
	static   []string
	matcher  *match.Set
	granted  []string
	handlers map[int]func([]string)
	nextID   int
}

// NewMemory constructs a source with the statically declared origin patterns.
func NewMemory(static ...string) (*Memory, error) {
	matcher, err := match.Compile(static...)
	if err != nil {
		return nil, fmt.Errorf("permissions: static origins: %w", err)
	}
	return &Memory{
		static:   slices.Clone(static),
		matcher:  matcher,
		handlers: map[int]func([]string){},
	}, nil
}

// StaticOrigins returns the install-time origin patterns.
func (m *Memory) StaticOrigins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.static)
}

// GrantedOrigins returns origins granted after install. Exact duplicates of
// static patterns are never reported. Unless ExactMatchOnly is set, origins
// already covered by a wider static pattern are dropped too.
func (m *Memory) GrantedOrigins(ctx context.Context, query Query) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.granted))
	for _, origin := range m.granted {
		if slices.Contains(m.static, origin) {
			continue
		}
		if !query.ExactMatchOnly && m.matcher.Match(origin) {
			continue
		}
		out = append(out, origin)
	}
	return out, nil
}

// Grant adds origins. Already granted origins are ignored.
func (m *Memory) Grant(origins ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, origin := range origins {
		if !slices.Contains(m.granted, origin) {
			m.granted = append(m.granted, origin)
		}
	}
}

// Revoke removes origins and notifies subscribers once with the batch that
// was actually removed. Nothing is delivered when no origin was granted.
func (m *Memory) Revoke(origins ...string) {
	m.mu.Lock()
	removed := make([]string, 0, len(origins))
	for _, origin := range origins {
		idx := slices.Index(m.granted, origin)
		if idx < 0 {
			continue
		}
		m.granted = slices.Delete(m.granted, idx, idx+1)
		removed = append(removed, origin)
	}
	handlers := m.snapshotHandlers()
	m.mu.Unlock()

	if len(removed) == 0 {
		return
	}
	for _, handler := range handlers {
		handler(slices.Clone(removed))
	}
}

// OnRevoked registers handler and returns a function that removes it.
func (m *Memory) OnRevoked(handler func(origins []string)) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.handlers, id)
			m.mu.Unlock()
		})
	}
}

// Subscribers reports the number of registered revocation handlers.
func (m *Memory) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

func (m *Memory) snapshotHandlers() []func([]string) {
	ids := make([]int, 0, len(m.handlers))
	for id := range m.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func([]string), 0, len(ids))
	for _, id := range ids {
		out = append(out, m.handlers[id])
	}
	return out
}
