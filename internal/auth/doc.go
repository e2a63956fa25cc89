// Package auth guards the admin console.
//
// # Session Gate
//
// Every request except health checks and static assets passes through a Gate,
// an ordered chain of Stages:
//
//  1. PublicStage admits paths that start with a public prefix
//     (/login, /api/auth/login, /api/auth/logout, /api/public).
//  2. SessionStage requires a non-empty access_token cookie. Pages without one
//     are redirected to /login; /api/ requests get a 401 envelope.
//
// The gate only checks that the cookie is present. Whether the token is still
// valid is decided by the upstream API on the next proxied call.
//
// # Login
//
// Handlers.Login forwards credentials to the upstream, applies a Policy to the
// returned identity (AdminOnly by default) and on success writes the
// access/refresh cookie pair. Tokens never appear in a response body.
//
// # Routes
//
//	POST /api/auth/login
//	POST /api/auth/logout
//	GET  /api/auth/logout
//	GET  /api/auth/session
package auth
