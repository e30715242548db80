package perdomain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-options-perdomain/pkg/activity"
	"github.com/goliatone/go-options-perdomain/pkg/form"
)

var errFormRequired = errors.New("perdomain: form is required")

// Binding ties a form to one store at a time. Switches are serialized: the
// active store is unbound before the next one is bound.
type Binding struct {
	manager     *Manager
	form        form.Form
	domainCount int
	domains     []string
	choice      form.Choice

	switchMu sync.Mutex
	active   SettingsStore
	selected string

	subMu       sync.RWMutex
	subscribers []func(domain string)
}

// BindFormSelector resolves selector through the configured document and
// binds the form it finds.
func (m *Manager) BindFormSelector(ctx context.Context, selector string) (*Binding, error) {
	if m.cfg.execution.IsInjected() {
		return nil, &WrongContextError{Op: "BindForm"}
	}
	if m.cfg.document == nil {
		return nil, &ElementResolutionError{Selector: selector}
	}
	f, ok := m.cfg.document.Query(selector)
	if !ok {
		return nil, &ElementResolutionError{Selector: selector}
	}
	return m.bindForm(ctx, f)
}

// BindForm binds f to the current origin's store. When other origins exist a
// domain picker is rendered in front of the form.
func (m *Manager) BindForm(ctx context.Context, f form.Form) (*Binding, error) {
	if m.cfg.execution.IsInjected() {
		return nil, &WrongContextError{Op: "BindForm"}
	}
	if f == nil {
		return nil, errFormRequired
	}
	return m.bindForm(ctx, f)
}

func (m *Manager) bindForm(ctx context.Context, f form.Form) (*Binding, error) {
	start := time.Now()
	store, err := m.StoreForOrigin(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := store.BindForm(ctx, f); err != nil {
		m.log(LogEvent{Op: "form.bind", Origin: m.cfg.currentOrigin, StorageName: store.StorageName(), Duration: time.Since(start), Err: err})
		return nil, err
	}

	all, err := m.allStores(ctx)
	if err != nil {
		store.UnbindForm()
		return nil, err
	}

	b := &Binding{
		manager:     m,
		form:        f,
		domainCount: all.Len(),
		domains:     all.Keys(),
		active:      store,
		selected:    DefaultDomain,
	}
	if all.Len() > 1 {
		choice, err := m.cfg.renderer.RenderChoice(f, all.Keys(), b.SelectDomain)
		if err != nil {
			store.UnbindForm()
			return nil, err
		}
		b.choice = choice
	}
	m.log(LogEvent{Op: "form.bind", Origin: m.cfg.currentOrigin, Domain: DefaultDomain, StorageName: store.StorageName(), Duration: time.Since(start)})
	return b, nil
}

// DomainCount is the number of domains available when the form was bound.
func (b *Binding) DomainCount() int {
	return b.domainCount
}

// SelectedDomain returns the domain shown by the picker, or DefaultDomain
// when there is a single domain.
func (b *Binding) SelectedDomain() string {
	if b.choice != nil {
		return b.choice.Selected()
	}
	b.switchMu.Lock()
	defer b.switchMu.Unlock()
	return b.selected
}

// OnChange registers fn for every completed switch. Subscribers are called
// in registration order after the new store is bound and must not call
// SelectDomain synchronously.
func (b *Binding) OnChange(fn func(domain string)) {
	if fn == nil {
		return
	}
	b.subMu.Lock()
	b.subscribers = append(b.subscribers, fn)
	b.subMu.Unlock()
}

// SelectDomain switches the form to domain. It is the picker's change
// handler and can be called directly. Domains that were not offered at bind
// time are rejected with form.ErrUnknownChoice and leave the binding as is.
// Store errors are returned unchanged; after a failed bind the form is left
// unbound and the picker goes back to the previous domain.
func (b *Binding) SelectDomain(ctx context.Context, domain string) error {
	if !slices.Contains(b.domains, domain) {
		return fmt.Errorf("%w %q", form.ErrUnknownChoice, domain)
	}
	m := b.manager
	start := time.Now()

	b.switchMu.Lock()
	previous := b.selected
	if b.active != nil {
		b.active.UnbindForm()
		b.active = nil
	}
	origin := m.originForDomain(domain)
	store, err := m.StoreForOrigin(ctx, origin)
	if err == nil {
		err = store.BindForm(ctx, b.form)
	}
	if err != nil {
		b.syncChoice(previous)
		b.switchMu.Unlock()
		m.log(LogEvent{Op: "form.switch", Origin: origin, Domain: domain, Duration: time.Since(start), Err: err})
		return err
	}
	b.active = store
	b.selected = domain
	b.syncChoice(domain)
	b.switchMu.Unlock()

	m.log(LogEvent{Op: "form.switch", Origin: origin, Domain: domain, StorageName: store.StorageName(), Duration: time.Since(start)})
	b.publish(domain)
	m.emit(ctx, activity.BuildDomainSwitchedEvent(activity.StoreEventInput{
		Origin:      origin,
		Domain:      domain,
		StorageName: store.StorageName(),
	}, previous))
	return nil
}

// syncChoice points the control at domain without firing its callback.
func (b *Binding) syncChoice(domain string) {
	if setter, ok := b.choice.(interface{ SetSelected(string) bool }); ok {
		setter.SetSelected(domain)
	}
}

func (b *Binding) publish(domain string) {
	b.subMu.RLock()
	subscribers := make([]func(string), len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.subMu.RUnlock()
	for _, fn := range subscribers {
		fn(domain)
	}
}

// Active returns the store currently bound to the form, or nil after a
// failed switch.
func (b *Binding) Active() SettingsStore {
	b.switchMu.Lock()
	defer b.switchMu.Unlock()
	return b.active
}

// originForDomain maps a picker label back to an origin.
func (m *Manager) originForDomain(domain string) string {
	if domain == DefaultDomain {
		return m.cfg.currentOrigin
	}
	return originForDomain(domain)
}
