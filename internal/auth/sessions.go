package auth

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/librarydesk/internal/config"
)

// Session data keys
const (
	SessionKeyFlashKind    = "flash_kind"
	SessionKeyFlashMessage = "flash_message"
)

// Flash kinds map to the banner colour on the page.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Kind    string
	Message string
}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager. With a SQLite
// *sql.DB sessions survive restarts; a nil sqlDB keeps them in memory.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	if cfg.SessionLifetime > 0 {
		sm.Lifetime = cfg.SessionLifetime
	}

	sm.Cookie.Name = "librarydesk_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so the flash survives the POST redirect
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// PutFlash stores a message to show on the next page load.
func (sm *SessionManager) PutFlash(ctx context.Context, kind, message string) {
	sm.Put(ctx, SessionKeyFlashKind, kind)
	sm.Put(ctx, SessionKeyFlashMessage, message)
}

// PopFlash returns and clears the pending message, if any.
func (sm *SessionManager) PopFlash(ctx context.Context) *Flash {
	message := sm.PopString(ctx, SessionKeyFlashMessage)
	kind := sm.PopString(ctx, SessionKeyFlashKind)
	if message == "" {
		return nil
	}
	if kind == "" {
		kind = FlashSuccess
	}
	return &Flash{Kind: kind, Message: message}
}
