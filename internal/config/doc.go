// Package config handles configuration loading for typing-console.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TYPING_CONSOLE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/typing-console/console.yaml
//  3. ~/.config/typing-console/console.yaml
//
// A file ending in .toml is decoded as TOML; anything else as YAML. When no
// file exists the configuration is read from the environment (see FromEnv).
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	upstream:
//	  base_url: "${UPSTREAM_API}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:3000"
//
//	upstream:
//	  base_url: "https://api.example.com"
//	  game_mode_id: "6799eda6dfe2b8ae9bb5e1d3"
//	  timeout: "15s"          # empty = no local timeout
//
//	session:
//	  environment: "production"  # sets the Secure cookie flag
//
//	tailscale:
//	  enabled: false
//	  hostname: "typing-console"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: true
//	  funnel: false
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load and FromEnv reject a missing listen address (unless tailscale is on),
// a tailscale block without a hostname, an upstream URL that is not absolute
// http(s), and malformed durations. A missing upstream URL is accepted; the
// console starts and answers every proxied call with "API not configured".
package config
