package perdomain

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestListAdditionalOrigins(t *testing.T) {
	perms := newPermissions(t, []string{"https://static.example/*", "https://*.wide.example/*"},
		"https://*.foo.example/*", "https://static.example/*", "https://sub.wide.example/*")
	m := newTestManager(t, Config{}, WithPermissions(perms), WithStoreFactory(newFakeFactory()))

	seq, err := m.ListAdditionalOrigins(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := slices.Collect(seq)
	want := []AdditionalOrigin{
		{Origin: "https://*.foo.example/*", Domain: "foo.example"},
		{Origin: "https://sub.wide.example/*", Domain: "sub.wide.example"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if again := slices.Collect(seq); len(again) != 0 {
		t.Fatalf("expected sequence to be single use, got %+v", again)
	}
}

func TestListAdditionalOriginsStopsEarly(t *testing.T) {
	perms := newPermissions(t, nil, "https://a.example/*", "https://b.example/*")
	m := newTestManager(t, Config{}, WithPermissions(perms), WithStoreFactory(newFakeFactory()))

	seq, err := m.ListAdditionalOrigins(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for origin := range seq {
		if origin.Domain != "a.example" {
			t.Fatalf("unexpected first origin %+v", origin)
		}
		break
	}
}

func TestListAdditionalOriginsErrors(t *testing.T) {
	injected := newTestManager(t, Config{}, WithExecutionContext(ContextInjected))
	if _, err := injected.ListAdditionalOrigins(context.Background()); !errors.Is(err, ErrWrongContext) {
		t.Fatalf("expected ErrWrongContext, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newTestManager(t, Config{})
	if _, err := m.ListAdditionalOrigins(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected permission query error, got %v", err)
	}
}
