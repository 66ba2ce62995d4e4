// Package interfaces documents the seams between librarydesk packages.
//
// Consumers declare the small interface they need next to the code that uses
// it; the concrete types live elsewhere and are matched in checks.go.
//
// # Data Access
//
//   - catalog.BookStore: listing, counting and mutating books (internal/catalog/service.go)
//   - http.BookSource: full catalog and counters for the JSON API (internal/http/config.go)
//   - http.AuditReader: paginated audit trail (internal/http/config.go)
//
// # Assistant
//
//   - catalog.Asker: answers a question about the catalog (internal/catalog/service.go)
//   - assistant.Runner: one chat completion against Workers AI (internal/assistant/service.go)
//   - assistant.Cache: answer cache, in memory or Redis (internal/assistant/cache.go)
//
// # Audit
//
//   - catalog.ActionRecorder and assistant.QuestionRecorder feed audit.Service
//   - tasks.AuditEventCleaner: retention cleanup run by the task queue
//
// # Adding a New Book Action
//
//  1. Add the constant and success message in internal/catalog/actions.go
//  2. Handle it in catalog.Service.apply and, if it touches storage, add the
//     method to catalog.BookStore and books.Repository
//  3. Render the button in internal/http/templates/books.html
//
// # Swapping the Answer Cache
//
// Implement assistant.Cache and pass it to assistant.NewService:
//
//	type Cache interface {
//	    Get(ctx context.Context, key string) (answer string, ok bool, err error)
//	    Set(ctx context.Context, key, answer string, ttl time.Duration) error
//	}
package interfaces
