package perdomain

import (
	"context"
	"iter"

	"github.com/goliatone/go-options-perdomain/pkg/form"
	"github.com/goliatone/go-options-perdomain/pkg/permissions"
)

const (
	// DefaultStorageName is the base storage name used when none is configured.
	DefaultStorageName = "options"
	// DefaultDomain labels the default store in AllStores and in the picker.
	DefaultDomain = "default"
)

// SettingsStore is one persisted settings object that can be bound to a form.
type SettingsStore interface {
	StorageName() string
	BindForm(ctx context.Context, f form.Form) error
	UnbindForm()
	// DeleteData removes the persisted data of the named stores.
	DeleteData(ctx context.Context, storageNames ...string) error
}

// StoreConfig is handed to a StoreFactory for every store the registry builds.
type StoreConfig struct {
	StorageName string
	Defaults    map[string]any
	Migrations  []Migration
}

// StoreFactory builds settings stores.
type StoreFactory interface {
	NewStore(ctx context.Context, cfg StoreConfig) (SettingsStore, error)
}

// StoreFactoryFunc adapts a function to StoreFactory.
type StoreFactoryFunc func(ctx context.Context, cfg StoreConfig) (SettingsStore, error)

// NewStore implements StoreFactory.
func (fn StoreFactoryFunc) NewStore(ctx context.Context, cfg StoreConfig) (SettingsStore, error) {
	return fn(ctx, cfg)
}

// GrantQuery narrows a granted-origin lookup.
type GrantQuery = permissions.Query

// Permissions reports host permissions and their revocation.
type Permissions interface {
	StaticOrigins() []string
	GrantedOrigins(ctx context.Context, query GrantQuery) ([]string, error)
	// OnRevoked registers handler for every revocation batch.
	OnRevoked(handler func(origins []string)) (unsubscribe func())
}

// Matcher tests origins against the statically declared patterns.
type Matcher interface {
	Match(origin string) bool
}

// ExecutionContext describes where the manager runs.
type ExecutionContext interface {
	// IsPrivileged reports a background context allowed to watch permissions.
	IsPrivileged() bool
	// IsInjected reports a content context that cannot enumerate permissions.
	IsInjected() bool
}

// ContextKind is a fixed ExecutionContext.
type ContextKind int

const (
	// ContextPage is an extension page: not privileged, not injected.
	ContextPage ContextKind = iota
	// ContextBackground is the privileged background context.
	ContextBackground
	// ContextInjected is a content script injected into a web page.
	ContextInjected
)

func (k ContextKind) IsPrivileged() bool { return k == ContextBackground }

func (k ContextKind) IsInjected() bool { return k == ContextInjected }

func (k ContextKind) String() string {
	switch k {
	case ContextBackground:
		return "background"
	case ContextInjected:
		return "injected"
	default:
		return "page"
	}
}

// AdditionalOrigin is a granted origin with its domain label.
type AdditionalOrigin struct {
	Origin string
	Domain string
}

// StoreMap maps domain labels to stores in insertion order. Setting a label
// again replaces its store but keeps its position.
type StoreMap struct {
	keys   []string
	stores map[string]SettingsStore
}

func newStoreMap(capacity int) *StoreMap {
	return &StoreMap{
		keys:   make([]string, 0, capacity),
		stores: make(map[string]SettingsStore, capacity),
	}
}

func (m *StoreMap) set(domain string, store SettingsStore) {
	if _, exists := m.stores[domain]; !exists {
		m.keys = append(m.keys, domain)
	}
	m.stores[domain] = store
}

// Len returns the number of domains.
func (m *StoreMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the domain labels in insertion order.
func (m *StoreMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the store for domain.
func (m *StoreMap) Get(domain string) (SettingsStore, bool) {
	if m == nil {
		return nil, false
	}
	store, ok := m.stores[domain]
	return store, ok
}

// All iterates domains and stores in insertion order.
func (m *StoreMap) All() iter.Seq2[string, SettingsStore] {
	return func(yield func(string, SettingsStore) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.stores[key]) {
				return
			}
		}
	}
}
