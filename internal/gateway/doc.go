// Package gateway assembles the typing console's HTTP server.
//
// # Request Pipeline
//
//	/health, /health/ready, /static/   served directly
//	everything else                    auth.Gate -> route handlers
//
// Route handlers come from three packages:
//
//   - auth: login, logout, session info
//   - proxy: text list/create/delete and the public CORS listing
//   - webadmin: login page, dashboard, help
//
// # Listeners
//
// By default the console listens on server.http_addr. With tailscale.enabled
// it joins the tailnet via tsnet instead and serves plain HTTP on :80, HTTPS
// with tailnet certificates on :443 (tailscale.https), or a public Funnel
// (tailscale.funnel).
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger, gateway.Options{})
//	err = gw.Run(ctx) // blocks until ctx is canceled
//
// Shutdown waits up to five seconds for in-flight requests.
package gateway
