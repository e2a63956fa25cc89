// ABOUTME: Adapter giving handlers an explicit per-request cookie jar
// ABOUTME: Converts session-aware handler funcs into plain net/http handlers

package session

import "net/http"

// HandlerFunc is an HTTP handler that receives the request's Jar explicitly
// instead of reaching for cookies itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, jar *Jar)

// Handle adapts h to net/http, binding a fresh Jar to every request.
func (o Options) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, NewJar(w, r, o))
	}
}
