// ABOUTME: Authorization predicates applied to identities returned on login
// ABOUTME: Default policy admits only the ADMIN role

package auth

import "github.com/2389/typing-console/internal/upstream"

// RoleAdmin is the only role allowed into the console by default.
const RoleAdmin = "ADMIN"

// Policy decides whether an authenticated identity may use the console.
type Policy interface {
	Admit(user *upstream.User) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(user *upstream.User) bool

// Admit calls f.
func (f PolicyFunc) Admit(user *upstream.User) bool {
	return f(user)
}

// RequireRole admits users whose role exactly matches one of roles.
// A nil user or an empty role never matches.
func RequireRole(roles ...string) Policy {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return PolicyFunc(func(user *upstream.User) bool {
		if user == nil || user.Role == "" {
			return false
		}
		_, ok := allowed[user.Role]
		return ok
	})
}

// AdminOnly is the console's default policy.
var AdminOnly = RequireRole(RoleAdmin)
