package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"golang.org/x/crypto/hkdf"
)

const (
	contextKeyCSRFToken = "csrf_token"
	contextKeyCSRFField = "csrf_field"
)

const csrfKeyInfo = "librarian csrf v1"

// CSRFKey turns the configured secret into the 32-byte key gorilla/csrf
// needs. An empty secret yields a random key, so tokens do not survive a
// restart.
func CSRFKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if secret == "" {
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		return key, nil
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(csrfKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}
	return key, nil
}

// CSRF protects every unsafe request with a form token. Set secure when
// the site is served over HTTPS.
func CSRF(key []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		r := c.Request
		if !secure && r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
			r = csrf.PlaintextHTTPRequest(r)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			// Store the token in the context for templates
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Set(contextKeyCSRFField, csrf.TemplateField(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, r)
		if !passed {
			c.Abort()
		}
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Form Expired</title></head>
<body>
<h1>Form Expired</h1>
<p>The form was open too long or was submitted from another site.</p>
<p><a href="/">Back to the library</a></p>
</body>
</html>`))
}

// CSRFToken retrieves the CSRF token from the Gin context.
func CSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}

// CSRFField returns the hidden input carrying the token, or "" when CSRF
// protection is off.
func CSRFField(c *gin.Context) template.HTML {
	if field, ok := c.Get(contextKeyCSRFField); ok {
		if html, ok := field.(template.HTML); ok {
			return html
		}
	}
	return ""
}
