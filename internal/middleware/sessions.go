package middleware

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/config"
)

// Session data keys
const (
	sessionKeyFlash      = "flash"
	sessionKeyFlashLevel = "flash_level"
)

// Flash levels understood by the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the page after a redirect.
type Flash struct {
	Message string
	Level   string
}

// SessionManager wraps scs.SessionManager with flash message helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager. Sessions are
// kept in the sessions table of the SQLite database; pass a nil sqlDB to
// keep them in memory, as the Postgres setup does.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) (*SessionManager, error) {
	sm := scs.New()

	if sqlDB != nil {
		// Create sessions table if it doesn't exist
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, fmt.Errorf("create sessions table: %w", err)
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// SetFlash stores a message for the next page the browser loads.
func (sm *SessionManager) SetFlash(r *http.Request, level, message string) {
	sm.Put(r.Context(), sessionKeyFlash, message)
	sm.Put(r.Context(), sessionKeyFlashLevel, level)
}

// PopFlash returns and clears the pending flash message.
func (sm *SessionManager) PopFlash(r *http.Request) *Flash {
	message := sm.PopString(r.Context(), sessionKeyFlash)
	level := sm.PopString(r.Context(), sessionKeyFlashLevel)
	if message == "" {
		return nil
	}
	if level == "" {
		level = FlashSuccess
	}
	return &Flash{Message: message, Level: level}
}

// SetFlash stores a flash message when sm is not nil. Handlers call it
// unconditionally; the session middleware is optional in tests.
func SetFlash(sm *SessionManager, c *gin.Context, level, message string) {
	if sm == nil {
		return
	}
	sm.SetFlash(c.Request, level, message)
}

// PopFlash is PopFlash for an optional session manager.
func PopFlash(sm *SessionManager, c *gin.Context) *Flash {
	if sm == nil {
		return nil
	}
	return sm.PopFlash(c.Request)
}
