package app

import (
	"net/url"
	"strings"
)

// originHost reduces an Origin header value to its host[:port] part so the
// allow-list patterns never need to mention a scheme.
func originHost(origin string) string {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return origin
	}
	return parsed.Host
}

// originAllowed reports whether host matches one allow-list pattern.
// Patterns are exact hosts, "*.domain" suffix wildcards, or "host:*" port
// wildcards.
func originAllowed(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
