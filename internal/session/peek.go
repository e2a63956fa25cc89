// ABOUTME: Unverified inspection of upstream access tokens
// ABOUTME: Reads subject/email/expiry claims for logs and the session-info endpoint

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the console can read from an access token without the
// upstream's signing key. None of it is trusted for access decisions.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past.
// A token without exp is never considered expired here.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Peek parses token as a JWT without verifying its signature. It returns
// false when token is not a JWT; opaque tokens are legal.
func Peek(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, false
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, true
}
