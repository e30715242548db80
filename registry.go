package perdomain

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-options-perdomain/pkg/activity"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"
)

// registry memoizes one store per storage name. Concurrent first requests
// for a name share a single construction; failed constructions are retried
// on the next request.
type registry struct {
	factory StoreFactory
	base    StoreConfig
	created func(ctx context.Context, origin, storageName string, elapsed time.Duration, err error)

	mu     sync.RWMutex
	stores map[string]SettingsStore
	group  singleflight.Group
}

func newRegistry(factory StoreFactory, base StoreConfig) *registry {
	return &registry{
		factory: factory,
		base:    base,
		stores:  map[string]SettingsStore{},
	}
}

func (r *registry) lookup(storageName string) (SettingsStore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[storageName]
	return store, ok
}

func (r *registry) get(ctx context.Context, storageName, origin string) (SettingsStore, error) {
	if store, ok := r.lookup(storageName); ok {
		return store, nil
	}
	value, err, _ := r.group.Do(storageName, func() (any, error) {
		if store, ok := r.lookup(storageName); ok {
			return store, nil
		}
		start := time.Now()
		cfg := r.base
		cfg.StorageName = storageName
		store, err := r.factory.NewStore(ctx, cfg)
		if err == nil && store == nil {
			err = fmt.Errorf("perdomain: factory returned nil store for %q", storageName)
		}
		if r.created != nil {
			r.created(ctx, origin, storageName, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.stores[storageName] = store
		r.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(SettingsStore), nil
}

// size reports the number of memoized stores.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// StoreForOrigin returns the store for origin, building it on first use.
// An empty origin means the current origin. Origins that share a domain
// label share the same store instance.
func (m *Manager) StoreForOrigin(ctx context.Context, origin string) (SettingsStore, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if origin == "" {
		origin = m.cfg.currentOrigin
	}
	return m.registry.get(ctx, m.storageNameFor(origin), origin)
}

func (m *Manager) storageNameFor(origin string) string {
	if m.classifier.usesDefaultStore(origin) {
		return m.base
	}
	return storageNameForOrigin(m.base, origin)
}

// AllStores returns the default store under DefaultDomain followed by one
// store per additional origin, in discovery order. Any failure fails the
// whole call.
func (m *Manager) AllStores(ctx context.Context) (*StoreMap, error) {
	if m.cfg.execution.IsInjected() {
		return nil, &WrongContextError{Op: "AllStores"}
	}
	return m.allStores(ctx)
}

func (m *Manager) allStores(ctx context.Context) (*StoreMap, error) {
	defaultStore, err := m.StoreForOrigin(ctx, "")
	if err != nil {
		return nil, err
	}
	seq, err := m.additionalOrigins(ctx)
	if err != nil {
		return nil, err
	}
	origins := slices.Collect(seq)

	stores := make([]SettingsStore, len(origins))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, origin := range origins {
		p.Go(func(ctx context.Context) error {
			store, err := m.StoreForOrigin(ctx, origin.Origin)
			if err != nil {
				return err
			}
			stores[i] = store
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	out := newStoreMap(len(origins) + 1)
	out.set(DefaultDomain, defaultStore)
	for i, origin := range origins {
		out.set(origin.Domain, stores[i])
	}
	return out, nil
}

func (m *Manager) storeCreated(ctx context.Context, origin, storageName string, elapsed time.Duration, err error) {
	domain := DefaultDomain
	if storageName != m.base {
		domain = ParseHost(origin)
	}
	m.log(LogEvent{Op: "store.create", Origin: origin, Domain: domain, StorageName: storageName, Duration: elapsed, Err: err})
	if err != nil {
		return
	}
	m.emit(ctx, activity.BuildStoreCreatedEvent(activity.StoreEventInput{
		Origin:      origin,
		Domain:      domain,
		StorageName: storageName,
	}))
}
