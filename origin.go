package perdomain

import "strings"

// ParseHost returns the domain label of an origin: the host without a
// leading "*." when origin has a scheme, origin itself otherwise.
//
//	ParseHost("https://*.foo.example/*") == "foo.example"
//	ParseHost("foo.example") == "foo.example"
func ParseHost(origin string) string {
	if !strings.Contains(origin, "//") {
		return origin
	}
	segments := strings.Split(origin, "/")
	if len(segments) < 3 {
		return ""
	}
	return strings.TrimPrefix(segments[2], "*.")
}

// originForDomain rebuilds a wildcard origin pattern from a domain label.
func originForDomain(domain string) string {
	return "https://*." + domain + "/*"
}

// classifier decides which origins share the default store. The matcher is
// fixed at construction.
type classifier struct {
	static Matcher
}

// usesDefaultStore reports origins that are not web origins (extension
// pages) or that match a static pattern.
func (c classifier) usesDefaultStore(origin string) bool {
	if !strings.HasPrefix(origin, "http") {
		return true
	}
	return c.isStatic(origin)
}

func (c classifier) isStatic(origin string) bool {
	return c.static != nil && c.static.Match(origin)
}

// storageNameForOrigin is "<base>-<domain>".
func storageNameForOrigin(base, origin string) string {
	return base + "-" + ParseHost(origin)
}
