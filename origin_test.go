package perdomain

import (
	"testing"

	"github.com/goliatone/go-options-perdomain/pkg/match"
)

func TestParseHost(t *testing.T) {
	cases := map[string]string{
		"https://*.foo.example/*":  "foo.example",
		"https://foo.example/*":    "foo.example",
		"http://foo.example":       "foo.example",
		"https://foo.example:8080": "foo.example:8080",
		"foo.example":              "foo.example",
		"https://*.a.*.b/":         "a.*.b",
		"//":                       "",
	}
	for origin, want := range cases {
		if got := ParseHost(origin); got != want {
			t.Fatalf("ParseHost(%q) = %q, want %q", origin, got, want)
		}
	}
}

func TestClassifierUsesDefaultStore(t *testing.T) {
	c := classifier{static: match.MustCompile("https://other.com/*")}
	cases := map[string]bool{
		"chrome-extension://abcdef":  true,
		"":                           true,
		"https://other.com":          true,
		"https://other.com/settings": true,
		"https://foo.example":        false,
		"https://sub.other.com/":     false,
		"http://*.foo.example/*":     false,
	}
	for origin, want := range cases {
		if got := c.usesDefaultStore(origin); got != want {
			t.Fatalf("usesDefaultStore(%q) = %v, want %v", origin, got, want)
		}
	}
}

func TestClassifierWithoutMatcher(t *testing.T) {
	var c classifier
	if c.isStatic("https://foo.example") {
		t.Fatalf("expected no static match without a matcher")
	}
	if !c.usesDefaultStore("moz-extension://id") {
		t.Fatalf("expected extension origin to use the default store")
	}
}

func TestStorageNameForOrigin(t *testing.T) {
	if got := storageNameForOrigin("options", "https://*.foo.example/*"); got != "options-foo.example" {
		t.Fatalf("unexpected storage name %q", got)
	}
	if got := originForDomain("foo.example"); got != "https://*.foo.example/*" {
		t.Fatalf("unexpected origin %q", got)
	}
	if got := storageNameForOrigin("prefs", originForDomain("bar.example")); got != "prefs-bar.example" {
		t.Fatalf("label did not round trip, got %q", got)
	}
}
