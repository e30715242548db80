//go:build js_eval

package settings

import "testing"

func TestJSMigration(t *testing.T) {
	migration, err := JSMigration("theme", `saved.legacyDark ? "dark" : defaults.theme`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	saved := map[string]any{"legacyDark": true}
	if err := migration(saved, map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved["theme"] != "dark" {
		t.Fatalf("expected dark, got %+v", saved)
	}

	drop, err := JSMigration("legacyDark", `undefined`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := drop(saved, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := saved["legacyDark"]; ok {
		t.Fatalf("expected key deleted")
	}
}
