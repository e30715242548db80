package perdomain

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-options-perdomain/pkg/activity"
	"github.com/goliatone/go-options-perdomain/pkg/form"
	"github.com/goliatone/go-options-perdomain/pkg/match"
	"github.com/goliatone/go-options-perdomain/pkg/permissions"
	"github.com/goliatone/go-options-perdomain/pkg/storage"
	"github.com/sourcegraph/conc"
)

// Manager owns the per-origin store registry for one settings schema.
// Managers never share stores with each other.
type Manager struct {
	cfg        managerConfig
	base       string
	classifier classifier
	registry   *registry
	emitter    *activity.Emitter

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	warmup      conc.WaitGroup
	closeOnce   sync.Once
	closed      atomic.Bool
}

// New constructs a manager. In a privileged context it subscribes to
// permission revocations and, when migrations are configured, builds every
// origin's store in the background so each one migrates.
func New(cfg Config, opts ...Option) (*Manager, error) {
	mcfg := applyOptions(opts)
	if err := mcfg.withDefaults(); err != nil {
		return nil, err
	}

	base := strings.TrimSpace(cfg.StorageName)
	if base == "" {
		base = DefaultStorageName
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:        mcfg,
		base:       base,
		classifier: classifier{static: mcfg.matcher},
		emitter:    activity.NewEmitter(mcfg.activityHooks, mcfg.activityConfig),
		ctx:        ctx,
		cancel:     cancel,
	}
	m.registry = newRegistry(mcfg.factory, StoreConfig{
		StorageName: base,
		Defaults:    maps.Clone(cfg.Defaults),
		Migrations:  append([]Migration(nil), cfg.Migrations...),
	})
	m.registry.created = m.storeCreated

	if !mcfg.execution.IsPrivileged() {
		return m, nil
	}
	if len(cfg.Migrations) > 0 {
		m.warmup.Go(func() {
			if _, err := m.allStores(m.ctx); err != nil {
				m.log(LogEvent{Op: "warmup", StorageName: base, Err: err})
			}
		})
	}
	m.unsubscribe = mcfg.permissions.OnRevoked(m.handleRevoked)
	return m, nil
}

func (cfg *managerConfig) withDefaults() error {
	if cfg.permissions == nil {
		p, err := permissions.NewMemory()
		if err != nil {
			return err
		}
		cfg.permissions = p
	}
	if cfg.matcher == nil {
		set, err := match.Compile(cfg.permissions.StaticOrigins()...)
		if err != nil {
			return fmt.Errorf("perdomain: static origins: %w", err)
		}
		cfg.matcher = set
	}
	if cfg.execution == nil {
		cfg.execution = ContextPage
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.renderer == nil {
		cfg.renderer = &form.PickerRenderer{}
	}
	if cfg.factory == nil {
		if cfg.area == nil {
			cfg.area = storage.NewMemoryArea()
		}
		if cfg.codec == nil {
			codec, err := storage.NewCodec()
			if err != nil {
				return fmt.Errorf("perdomain: codec: %w", err)
			}
			cfg.codec = codec
		}
		cfg.factory = SettingsFactory(cfg.area, cfg.codec)
	}
	return nil
}

// StorageName returns the base storage name.
func (m *Manager) StorageName() string {
	return m.base
}

// Close stops watching revocations and waits for the background warm-up to
// finish migrating every store. Stores already handed out keep working; the
// manager itself rejects further lookups with ErrClosed.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.warmup.Wait()
		m.closed.Store(true)
		m.cancel()
	})
	return nil
}

func (m *Manager) log(event LogEvent) {
	m.cfg.logger.Log(event)
}

func (m *Manager) emit(ctx context.Context, event activity.Event) {
	if !m.emitter.Enabled() {
		return
	}
	if err := m.emitter.Emit(ctx, event); err != nil {
		m.log(LogEvent{Op: "activity", Origin: event.Origin, Domain: event.Domain, StorageName: event.StorageName, Err: err})
	}
}
