// Package books provides the catalog queries and mutations.
//
// Sort and search columns come from the catalog enums and are mapped through
// fixed tables; only search terms and ids are bound as parameters.
//
//	var _ catalog.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	list, err := repo.List(ctx, catalog.ParseListQuery(r.URL.Query()))
package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/entities"
)

var sortColumns = map[catalog.SortField]string{
	catalog.SortTitle:        "title",
	catalog.SortAuthor:       "author",
	catalog.SortCreatedAt:    "created_at",
	catalog.SortIsCheckedOut: "is_checked_out",
}

var searchColumns = map[catalog.SearchField]string{
	catalog.SearchTitle:        "title",
	catalog.SearchAuthor:       "author",
	catalog.SearchIsCheckedOut: "is_checked_out",
	catalog.SearchCreatedAt:    "created_at",
}

// Stats summarizes the catalog.
type Stats struct {
	Total      int64 `json:"total"`
	CheckedOut int64 `json:"checked_out"`
	Available  int64 `json:"available"`
}

// Repository handles all book database operations.
type Repository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, tracer: otel.Tracer("librarydesk/books")}
}

// List returns one page of books matching q, ordered by the requested column.
func (r *Repository) List(ctx context.Context, q catalog.ListQuery) ([]entities.Book, error) {
	ctx, span := r.tracer.Start(ctx, "books.list", trace.WithAttributes(
		attribute.Int("offset", q.Offset()),
		attribute.Int("limit", q.Limit()),
	))
	defer span.End()

	var books []entities.Book
	err := r.db.WithContext(ctx).
		Scopes(searchScope(q.Filters), orderScope(q.Filters)).
		Limit(q.Limit()).
		Offset(q.Offset()).
		Find(&books).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return books, nil
}

// Count returns the number of books matching the same filter as List.
func (r *Repository) Count(ctx context.Context, q catalog.ListQuery) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "books.count")
	defer span.End()

	var total int64
	err := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Scopes(searchScope(q.Filters)).
		Count(&total).Error
	if err != nil {
		span.RecordError(err)
	}
	return total, err
}

// All returns every book in insertion order.
func (r *Repository) All(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// GetByID retrieves a single book.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateDetails changes title and author. A missing id is not an error.
func (r *Repository) UpdateDetails(ctx context.Context, id uint, title, author string) error {
	return r.update(ctx, id, map[string]any{
		"title":  title,
		"author": author,
	})
}

// Checkout marks the book as lent out at the given time.
func (r *Repository) Checkout(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"is_checked_out":      true,
		"last_checked_out_at": at,
	})
}

// Return marks the book as back on the shelf at the given time.
func (r *Repository) Return(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"is_checked_out":     false,
		"last_checked_in_at": at,
	})
}

func (r *Repository) update(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the row permanently.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error
}

// CreateMany inserts books in one transaction, used by the seed command.
func (r *Repository) CreateMany(ctx context.Context, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range books {
		if books[i].CreatedAt.IsZero() {
			books[i].CreatedAt = now
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(books, 100).Error
	})
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx).Model(&entities.Book{})
	if err := db.Count(&s.Total).Error; err != nil {
		return s, fmt.Errorf("count books: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("is_checked_out = ?", true).
		Count(&s.CheckedOut).Error; err != nil {
		return s, fmt.Errorf("count checked out books: %w", err)
	}
	s.Available = s.Total - s.CheckedOut
	return s, nil
}

func searchScope(f catalog.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search == "" {
			return db
		}
		pattern := "%" + f.Search + "%"

		if f.Field == catalog.SearchIsCheckedOut {
			switch strings.ToLower(f.Search) {
			case "available":
				return db.Where("is_checked_out = ?", false)
			case "checked out", "checked_out", "checked-out":
				return db.Where("is_checked_out = ?", true)
			}
		}

		column, ok := searchColumns[f.Field]
		if !ok {
			return db.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?))", pattern, pattern)
		}
		switch f.Field {
		case catalog.SearchIsCheckedOut, catalog.SearchCreatedAt:
			return db.Where("CAST("+column+" AS TEXT) LIKE ?", pattern)
		default:
			return db.Where("LOWER("+column+") LIKE LOWER(?)", pattern)
		}
	}
}

func orderScope(f catalog.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[f.Sort]
		if !ok {
			column = sortColumns[catalog.DefaultSortField]
		}
		desc := f.Dir != catalog.SortAsc
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
}
