// ABOUTME: Request-scoped access to the console's session cookies
// ABOUTME: Issues and clears the access/refresh cookie pair with fixed attributes

package session

import (
	"net/http"
	"time"
)

const (
	// AccessCookie holds the upstream access token.
	AccessCookie = "access_token"

	// RefreshCookie holds the upstream refresh token. The console stores it
	// but never uses it.
	RefreshCookie = "refresh_token"

	// AccessMaxAge is the lifetime of the access cookie.
	AccessMaxAge = 24 * time.Hour

	// RefreshMaxAge is the lifetime of the refresh cookie.
	RefreshMaxAge = 7 * 24 * time.Hour
)

// Options controls cookie attributes that vary by deployment.
type Options struct {
	// Secure sets the Secure flag; enabled in production.
	Secure bool
}

// Tokens is the credential pair written on login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Jar is the cookie view of a single request/response pair. Every cookie it
// writes is HttpOnly, SameSite=Strict and scoped to the whole site.
type Jar struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options
}

// NewJar binds a Jar to one request.
func NewJar(w http.ResponseWriter, r *http.Request, opts Options) *Jar {
	return &Jar{w: w, r: r, opts: opts}
}

// Get returns the value of the named cookie, or "" if absent.
func (j *Jar) Get(name string) string {
	c, err := j.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Set writes a cookie with the jar's fixed attributes.
func (j *Jar) Set(name, value string, maxAge time.Duration) {
	http.SetCookie(j.w, j.cookie(name, value, int(maxAge.Seconds())))
}

// Delete expires the named cookie on the client.
func (j *Jar) Delete(name string) {
	http.SetCookie(j.w, j.cookie(name, "", -1))
}

// AccessToken returns the access credential, or "" when there is no session.
func (j *Jar) AccessToken() string {
	return j.Get(AccessCookie)
}

// HasSession reports whether a non-empty access cookie is present.
// Presence is all it checks; expiry is the upstream's concern.
func (j *Jar) HasSession() bool {
	return j.AccessToken() != ""
}

// Issue writes both session cookies together.
func (j *Jar) Issue(t Tokens) {
	j.Set(AccessCookie, t.AccessToken, AccessMaxAge)
	j.Set(RefreshCookie, t.RefreshToken, RefreshMaxAge)
}

// Clear deletes both session cookies. Safe to call without a session.
func (j *Jar) Clear() {
	j.Delete(AccessCookie)
	j.Delete(RefreshCookie)
}

func (j *Jar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
