package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarydesk/internal/assistant"
	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	auditrepo "github.com/mrlokans/librarydesk/internal/database/audit"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/demo"
	"github.com/mrlokans/librarydesk/internal/http"
	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ catalog.BookStore = (*books.Repository)(nil)
var _ http.BookSource = (*books.Repository)(nil)

var _ http.AuditReader = (*auditrepo.Repository)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Catalog and Assistant
// =============================================================================

var _ http.Catalog = (*catalog.Service)(nil)
var _ catalog.Asker = (*assistant.Service)(nil)
var _ assistant.Runner = (*assistant.Client)(nil)

var _ assistant.Cache = (*assistant.MemoryCache)(nil)
var _ assistant.Cache = (*assistant.RedisCache)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ catalog.ActionRecorder = (*audit.Service)(nil)
var _ assistant.QuestionRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Sessions and Background Work
// =============================================================================

var _ http.Flashes = (*auth.SessionManager)(nil)
var _ demo.Flasher = (*auth.SessionManager)(nil)

var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = scheduler.EnqueuerFunc(nil)
