// Package match compiles extension host match patterns (for example
// "https://*.example.com/*") into a set that can test origins and URLs.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// AllURLs is the special pattern matching every supported scheme.
const AllURLs = "<all_urls>"

// ErrInvalidPattern is returned when a pattern cannot be parsed.
var ErrInvalidPattern = errors.New("match: invalid pattern")

var allURLSchemes = map[string]struct{}{
	"http": {}, "https": {}, "ws": {}, "wss": {}, "ftp": {}, "file": {},
}

// Pattern is one compiled match pattern.
type Pattern struct {
	raw    string
	scheme string
	host   string
	path   *regexp.Regexp
	all    bool
}

// Set is an immutable group of patterns. The zero value matches nothing.
type Set struct {
	patterns []Pattern
}

// Compile parses every pattern. An empty list yields an empty Set.
func Compile(patterns ...string) (*Set, error) {
	set := &Set{patterns: make([]Pattern, 0, len(patterns))}
	for _, raw := range patterns {
		pattern, err := parse(raw)
		if err != nil {
			return nil, err
		}
		set.patterns = append(set.patterns, pattern)
	}
	return set, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns ...string) *Set {
	set, err := Compile(patterns...)
	if err != nil {
		panic(err)
	}
	return set
}

// Match reports whether target matches any pattern in the set.
func (s *Set) Match(target string) bool {
	if s == nil {
		return false
	}
	scheme, host, path, ok := split(target)
	if !ok {
		return false
	}
	for _, p := range s.patterns {
		if p.matches(scheme, host, path) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns in compile order.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p.raw)
	}
	return out
}

// String returns the source pattern.
func (p Pattern) String() string {
	return p.raw
}

func (p Pattern) matches(scheme, host, path string) bool {
	if p.all {
		_, ok := allURLSchemes[scheme]
		return ok
	}
	switch p.scheme {
	case "*":
		if scheme != "http" && scheme != "https" {
			return false
		}
	default:
		if scheme != p.scheme {
			return false
		}
	}
	if !matchHost(p.host, host) {
		return false
	}
	return p.path.MatchString(path)
}

func matchHost(pattern, host string) bool {
	if pattern == "*" {
		return true
	}
	if base, ok := strings.CutPrefix(pattern, "*."); ok && host == base {
		return true
	}
	matched, err := doublestar.Match(pattern, host)
	return err == nil && matched
}

func parse(raw string) (Pattern, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == AllURLs {
		return Pattern{raw: raw, all: true}, nil
	}
	scheme, rest, ok := strings.Cut(trimmed, "://")
	if !ok || scheme == "" {
		return Pattern{}, fmt.Errorf("%w %q: missing scheme", ErrInvalidPattern, raw)
	}
	scheme = strings.ToLower(scheme)
	if scheme != "*" {
		if _, known := allURLSchemes[scheme]; !known {
			return Pattern{}, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidPattern, raw, scheme)
		}
	}
	host, path, hasPath := strings.Cut(rest, "/")
	if !hasPath {
		return Pattern{}, fmt.Errorf("%w %q: missing path", ErrInvalidPattern, raw)
	}
	host = stripPort(strings.ToLower(host))
	if host == "" && scheme != "file" {
		return Pattern{}, fmt.Errorf("%w %q: missing host", ErrInvalidPattern, raw)
	}
	if strings.Contains(strings.TrimPrefix(host, "*."), "*") && host != "*" {
		return Pattern{}, fmt.Errorf("%w %q: wildcard must lead the host", ErrInvalidPattern, raw)
	}
	if !doublestar.ValidatePattern(host) {
		return Pattern{}, fmt.Errorf("%w %q: bad host", ErrInvalidPattern, raw)
	}
	return Pattern{
		raw:    raw,
		scheme: scheme,
		host:   host,
		path:   compilePath("/" + path),
	}, nil
}

func compilePath(glob string) *regexp.Regexp {
	parts := strings.Split(glob, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// split breaks an origin or URL into lower-cased scheme, port-less host and
// path. A missing path is reported as "/".
func split(target string) (scheme, host, path string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(target), "://")
	if !found || scheme == "" {
		return "", "", "", false
	}
	host, path, hasPath := strings.Cut(rest, "/")
	if hasPath {
		path = "/" + path
	} else {
		path = "/"
	}
	if i := strings.IndexAny(host, "?#"); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(scheme), stripPort(strings.ToLower(host)), path, true
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		return host
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		return host[:i]
	}
	return host
}
