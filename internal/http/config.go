package http

import (
	"context"

	"github.com/mrlokans/librarydesk/internal/analytics"
	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/demo"
	"github.com/mrlokans/librarydesk/internal/entities"
)

// Catalog loads pages and applies form actions.
type Catalog interface {
	Load(ctx context.Context, q catalog.ListQuery) (*catalog.Page, error)
	Apply(ctx context.Context, form catalog.ActionForm) catalog.Result
}

// BookSource returns the whole catalog and its counters.
type BookSource interface {
	All(ctx context.Context) ([]entities.Book, error)
	Stats(ctx context.Context) (books.Stats, error)
}

// Flashes carries one-shot messages across the POST redirect.
type Flashes interface {
	PutFlash(ctx context.Context, kind, message string)
	PopFlash(ctx context.Context) *auth.Flash
}

// AuditReader lists recorded events.
type AuditReader interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Books    BookSource
	Asker    catalog.Asker
	Audit    AuditReader
	Database *database.Database

	// Security
	CSRFSecret     []byte
	SecureCookies  bool
	APIToken       string
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	DemoMiddleware *demo.Middleware

	// Application info
	Analytics analytics.Plausible
	Features  Features // BasicAuth, DemoMode and Analytics are derived from the fields above
	Version   string
}
