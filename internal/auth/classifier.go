// ABOUTME: Public-path classifier for the session gateway
// ABOUTME: Prefix-matches request paths against a fixed ordered allow-list

package auth

import "strings"

// DefaultPublicPrefixes are exempt from the session check, in match order.
//
// Matching is by prefix, so anything nested under or extending one of these
// (e.g. "/login-help", "/api/public-stats") is public too. Keep that in mind
// before adding an entry.
var DefaultPublicPrefixes = []string{
	"/login",
	"/api/auth/login",
	"/api/auth/logout",
	"/api/public",
}

// Classifier decides whether a path needs a session.
type Classifier struct {
	prefixes []string
}

// NewClassifier builds a classifier over prefixes. With no arguments it uses
// DefaultPublicPrefixes.
func NewClassifier(prefixes ...string) *Classifier {
	if len(prefixes) == 0 {
		prefixes = DefaultPublicPrefixes
	}
	p := make([]string, len(prefixes))
	copy(p, prefixes)
	return &Classifier{prefixes: p}
}

// IsPublic reports whether path starts with any public prefix.
func (c *Classifier) IsPublic(path string) bool {
	for _, p := range c.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the allow-list.
func (c *Classifier) Prefixes() []string {
	out := make([]string, len(c.prefixes))
	copy(out, c.prefixes)
	return out
}

// IsAPIPath reports whether path addresses the JSON API rather than a page.
func IsAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
