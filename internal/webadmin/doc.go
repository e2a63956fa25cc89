// Package webadmin provides the browser UI of the typing console.
//
// # Pages
//
//	GET /login        sign-in form (redirects to / when a session exists)
//	GET /             texts dashboard
//	GET /help         help topics rendered from embedded markdown
//	GET /static/...   embedded CSS and JS
//
// Pages are server-rendered shells. The dashboard loads, creates and deletes
// texts from the browser through the console's own /api endpoints, so the
// access token never leaves its HttpOnly cookie.
//
// # Dashboard
//
//   - Table of texts (language, first 100 characters, creation date)
//   - Language filter and pagination, 50 texts per page
//   - Create dialog with a language picker and a 10,000 character counter
//   - Delete with confirmation
//   - Light/dark theme toggle and logout
//
// # Templates
//
// Templates live in templates/ and are embedded with go:embed. Every page
// defines a "content" block rendered inside base.html.
package webadmin
