// ABOUTME: Embeds HTML templates, static assets, and help docs into the binary
// ABOUTME: Provides templateFS, staticFS, and helpDocsFS for loading at runtime

package webadmin

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

//go:embed docs/help/*.md
var helpDocsFS embed.FS
