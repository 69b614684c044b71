// Package middleware holds the gin middleware shared by every page:
// security headers, CSRF protection for forms, and cookie sessions used
// to carry flash messages across the redirect that follows a write.
//
// Order matters. Sessions load first so the 404 page can still show a
// flash. CSRF wraps only the HTML routes; gorilla/csrf derives its request
// from the one carrying the session context:
//
//	router.Use(middleware.SecurityHeaders())
//	router.Use(sessions.LoadSave())
//	ui := router.Group("/", middleware.CSRF(key, secure))
package middleware
