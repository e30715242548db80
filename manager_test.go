package perdomain

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-options-perdomain/pkg/match"
	"github.com/goliatone/go-options-perdomain/pkg/storage"
)

func TestNewAppliesDefaults(t *testing.T) {
	m := newTestManager(t, Config{StorageName: "  "})
	if m.StorageName() != DefaultStorageName {
		t.Fatalf("expected default storage name, got %q", m.StorageName())
	}
	store, err := m.StoreForOrigin(context.Background(), "")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if store.StorageName() != DefaultStorageName {
		t.Fatalf("expected default store, got %q", store.StorageName())
	}
}

func TestNewRejectsInvalidStaticOrigins(t *testing.T) {
	perms := staticOnly{origins: []string{"not a pattern"}}
	if _, err := New(Config{}, WithPermissions(perms)); !errors.Is(err, match.ErrInvalidPattern) {
		t.Fatalf("expected invalid pattern error, got %v", err)
	}
}

func TestWithMatcherOverridesStaticOrigins(t *testing.T) {
	m := newTestManager(t, Config{}, WithStoreFactory(newFakeFactory()),
		WithMatcher(match.MustCompile("https://*.foo.example/*")))
	store, err := m.StoreForOrigin(context.Background(), "https://foo.example")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if store.StorageName() != "options" {
		t.Fatalf("expected matcher to route to the default store, got %q", store.StorageName())
	}
}

func TestWarmupMigratesEveryOrigin(t *testing.T) {
	ctx := context.Background()
	area := storage.NewMemoryArea()
	codec, err := storage.NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	defer codec.Close()
	_ = area.Set(ctx, "options-foo.example", []byte(`{"color":"blue","legacy":true}`))

	perms := newPermissions(t, nil, "https://*.foo.example/*")
	m, err := New(Config{
		Defaults:   map[string]any{"color": "red"},
		Migrations: []Migration{RemoveUnused},
	}, WithArea(area), WithCodec(codec), WithPermissions(perms), WithExecutionContext(ContextBackground))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, ok, err := area.Get(ctx, "options-foo.example")
	if err != nil || !ok {
		t.Fatalf("expected migrated data, ok=%v err=%v", ok, err)
	}
	values, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := values["legacy"]; ok || values["color"] != "blue" {
		t.Fatalf("expected legacy key removed, got %+v", values)
	}
}

func TestWarmupSkippedWithoutMigrations(t *testing.T) {
	factory := newFakeFactory()
	m, err := New(Config{}, WithStoreFactory(factory), WithExecutionContext(ContextBackground),
		WithPermissions(newPermissions(t, nil, "https://foo.example/*")))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = m.Close()
	if len(factory.order) != 0 {
		t.Fatalf("expected no eager construction, got %v", factory.order)
	}
}

func TestWarmupBuildsStoresWithMigrations(t *testing.T) {
	factory := newFakeFactory()
	factory.delay = 20 * time.Millisecond
	m, err := New(Config{Migrations: []Migration{RemoveUnused}}, WithStoreFactory(factory),
		WithExecutionContext(ContextBackground),
		WithPermissions(newPermissions(t, nil, "https://foo.example/*", "https://bar.example/*")))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = m.Close()

	built := slices.Sorted(slices.Values(factory.order))
	if !slices.Equal(built, []string{"options", "options-bar.example", "options-foo.example"}) {
		t.Fatalf("unexpected warm-up constructions %v", built)
	}
}

func TestCloseRejectsLookups(t *testing.T) {
	m := newTestManager(t, Config{}, WithStoreFactory(newFakeFactory()))
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := m.StoreForOrigin(context.Background(), ""); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNilOptionsAreSkipped(t *testing.T) {
	m := newTestManager(t, Config{}, nil, WithLogger(nil), nil)
	if _, ok := m.cfg.logger.(noopLogger); !ok {
		t.Fatalf("expected noop logger, got %T", m.cfg.logger)
	}
}

type staticOnly struct {
	origins []string
}

func (s staticOnly) StaticOrigins() []string { return s.origins }

func (s staticOnly) GrantedOrigins(context.Context, GrantQuery) ([]string, error) { return nil, nil }

func (s staticOnly) OnRevoked(func([]string)) func() { return func() {} }
