// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Driver selection (sqlite or postgres) and migrations
//	├── books/           # Book catalog queries and mutations
//	└── audit/           # Audit event log
//
// # Usage
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	page, err := booksRepo.List(ctx, query)
//
// Each sub-package exposes a Repository with a *gorm.DB field and a
// NewRepository constructor. Interface conformance is checked at compile time
// in internal/interfaces.
package database
