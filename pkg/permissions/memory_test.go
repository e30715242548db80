package permissions

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/goliatone/go-options-perdomain/pkg/match"
)

func TestGrantedOriginsExcludesStatic(t *testing.T) {
	source, err := NewMemory("https://*.app.com/*")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	source.Grant("https://*.app.com/*", "https://www.app.com/*", "https://*.foo.example/*", "https://*.foo.example/*")

	exact, err := source.GrantedOrigins(context.Background(), Query{ExactMatchOnly: true})
	if err != nil {
		t.Fatalf("granted: %v", err)
	}
	if want := []string{"https://www.app.com/*", "https://*.foo.example/*"}; !slices.Equal(exact, want) {
		t.Fatalf("exact: got %v want %v", exact, want)
	}

	broad, err := source.GrantedOrigins(context.Background(), Query{})
	if err != nil {
		t.Fatalf("granted: %v", err)
	}
	if want := []string{"https://*.foo.example/*"}; !slices.Equal(broad, want) {
		t.Fatalf("broad: got %v want %v", broad, want)
	}
}

func TestGrantedOriginsHonoursContext(t *testing.T) {
	source, _ := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.GrantedOrigins(ctx, Query{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRevokeNotifiesOncePerBatch(t *testing.T) {
	source, _ := NewMemory()
	source.Grant("https://a.test/*", "https://b.test/*")

	var batches [][]string
	unsubscribe := source.OnRevoked(func(origins []string) {
		batches = append(batches, origins)
	})

	source.Revoke("https://a.test/*", "https://missing.test/*", "https://b.test/*")
	source.Revoke("https://a.test/*")

	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	if want := []string{"https://a.test/*", "https://b.test/*"}; !slices.Equal(batches[0], want) {
		t.Fatalf("batch: got %v want %v", batches[0], want)
	}

	unsubscribe()
	unsubscribe()
	if source.Subscribers() != 0 {
		t.Fatalf("expected handler removed, got %d", source.Subscribers())
	}
	source.Grant("https://c.test/*")
	source.Revoke("https://c.test/*")
	if len(batches) != 1 {
		t.Fatalf("expected no delivery after unsubscribe")
	}
}

func TestNewMemoryRejectsBadPatterns(t *testing.T) {
	if _, err := NewMemory("not-a-pattern"); !errors.Is(err, match.ErrInvalidPattern) {
		t.Fatalf("expected invalid pattern error, got %v", err)
	}
}
