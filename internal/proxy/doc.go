// Package proxy forwards text management calls to the upstream API.
//
// Protected routes read the access token from the session cookie and send it
// upstream as a bearer credential:
//
//	GET    /api/texts?page&limit&language
//	POST   /api/texts
//	DELETE /api/texts/{id}
//
// The open listing serves one game mode's texts to third parties, with CORS:
//
//	GET     /api/public/texts?page&limit&language
//	OPTIONS /api/public/texts
//
// Upstream failures are relayed with their status and body. Network errors
// and unreadable upstream bodies are logged and reported as a generic 500.
package proxy
