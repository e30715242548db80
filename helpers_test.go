package perdomain

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-options-perdomain/pkg/form"
	"github.com/goliatone/go-options-perdomain/pkg/permissions"
)

// bindTracker counts stores bound at the same time across a test.
type bindTracker struct {
	bound      atomic.Int32
	violations atomic.Int32
}

type fakeStore struct {
	name    string
	tracker *bindTracker
	bindErr error

	mu      sync.Mutex
	binds   int
	unbinds int
	bound   bool
	deleted [][]string
}

func (s *fakeStore) StorageName() string { return s.name }

func (s *fakeStore) BindForm(ctx context.Context, f form.Form) error {
	if s.bindErr != nil {
		return s.bindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binds++
	if !s.bound && s.tracker != nil {
		if s.tracker.bound.Add(1) > 1 {
			s.tracker.violations.Add(1)
		}
	}
	s.bound = true
	return nil
}

func (s *fakeStore) UnbindForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return
	}
	s.unbinds++
	s.bound = false
	if s.tracker != nil {
		s.tracker.bound.Add(-1)
	}
}

func (s *fakeStore) DeleteData(ctx context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, names)
	return nil
}

func (s *fakeStore) counts() (binds, unbinds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binds, s.unbinds
}

// fakeFactory builds fakeStores and records how often each name is built.
type fakeFactory struct {
	tracker  *bindTracker
	delay    time.Duration
	fail     map[string]error
	bindErrs map[string]error

	mu     sync.Mutex
	calls  map[string]int
	stores map[string]*fakeStore
	order  []string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		tracker: &bindTracker{},
		calls:   map[string]int{},
		stores:  map[string]*fakeStore{},
	}
}

func (f *fakeFactory) NewStore(ctx context.Context, cfg StoreConfig) (SettingsStore, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[cfg.StorageName]++
	f.order = append(f.order, cfg.StorageName)
	if err := f.fail[cfg.StorageName]; err != nil {
		delete(f.fail, cfg.StorageName)
		return nil, err
	}
	store := &fakeStore{name: cfg.StorageName, tracker: f.tracker, bindErr: f.bindErrs[cfg.StorageName]}
	f.stores[cfg.StorageName] = store
	return store, nil
}

func (f *fakeFactory) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFactory) store(name string) *fakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores[name]
}

func newPermissions(t *testing.T, static []string, granted ...string) *permissions.Memory {
	t.Helper()
	p, err := permissions.NewMemory(static...)
	if err != nil {
		t.Fatalf("permissions: %v", err)
	}
	p.Grant(granted...)
	return p
}

func newTestManager(t *testing.T, cfg Config, opts ...Option) *Manager {
	t.Helper()
	m, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}
