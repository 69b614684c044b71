package http

import "github.com/mrlokans/librarian/internal/middleware"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library  Library
	Activity ActivityReader
	Database Pinger

	// Sessions carry flash messages between a form post and the page it
	// redirects to. Nil disables flashes.
	Sessions *middleware.SessionManager

	// CSRFKey enables form token checks on the HTML pages when set.
	CSRFKey       []byte
	SecureCookies bool

	// UI paths; empty means the embedded templates and assets
	TemplatesPath string
	StaticPath    string

	// Metrics exposes /metrics and instruments every request
	Metrics bool

	// Task queue client (optional)
	TaskQueue             TaskQueue
	ActivityRetentionDays int

	// Application info
	Version string
}
