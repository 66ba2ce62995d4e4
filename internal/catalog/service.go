package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logger"
)

// BookStore is the persistence the catalog needs.
type BookStore interface {
	List(ctx context.Context, q ListQuery) ([]entities.Book, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
	All(ctx context.Context) ([]entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	UpdateDetails(ctx context.Context, id uint, title, author string) error
	Checkout(ctx context.Context, id uint, at time.Time) error
	Return(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// Asker answers a free-form question given the whole catalog.
// Implementations never fail; they return a fallback text instead.
type Asker interface {
	Ask(ctx context.Context, prompt string, books []entities.Book) string
}

// ActionRecorder is notified after every applied action.
type ActionRecorder interface {
	RecordBookAction(ctx context.Context, action string, bookID uint, description string, err error)
}

// Page is everything the books page renders.
type Page struct {
	Books      []entities.Book `json:"books"`
	Pagination Pagination      `json:"pagination"`
	Filters    Filters         `json:"filters"`
	AIResponse string          `json:"aiResponse,omitempty"`
	Error      string          `json:"error,omitempty"`
	Query      ListQuery       `json:"-"`
}

// EmptyPage is shown when loading failed.
func EmptyPage(msg string) *Page {
	return &Page{
		Books:      []entities.Book{},
		Pagination: NewPagination(1, 0),
		Filters:    DefaultFilters(),
		Error:      msg,
		Query:      ListQuery{Filters: DefaultFilters(), Page: 1},
	}
}

type Service struct {
	store    BookStore
	asker    Asker
	recorder ActionRecorder
	now      func() time.Time
	tracer   trace.Tracer
}

// NewService creates the catalog service. asker may be nil, in which case
// prompts are ignored.
func NewService(store BookStore, asker Asker) *Service {
	return &Service{
		store:  store,
		asker:  asker,
		now:    time.Now,
		tracer: otel.Tracer("librarydesk/catalog"),
	}
}

// SetRecorder attaches an audit recorder.
func (s *Service) SetRecorder(r ActionRecorder) {
	s.recorder = r
}

// Load fetches one page of books and, when a prompt is present, the
// assistant's answer. On failure the returned page is EmptyPage with the
// generic load error and err carries the cause.
func (s *Service) Load(ctx context.Context, q ListQuery) (*Page, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.load",
		trace.WithAttributes(
			attribute.String("search.field", string(q.Field)),
			attribute.String("sort", string(q.Sort)+" "+string(q.Dir)),
			attribute.Int("page", q.Page),
			attribute.Bool("ai_prompt", q.AIPrompt != ""),
		))
	defer span.End()

	page, err := s.load(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithComponent("catalog").WithError(err).Error("Database error while loading books")
		return EmptyPage(MsgLoadFailed), err
	}
	return page, nil
}

func (s *Service) load(ctx context.Context, q ListQuery) (*Page, error) {
	books, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	if books == nil {
		books = []entities.Book{}
	}

	page := &Page{
		Books:      books,
		Pagination: NewPagination(q.Page, total),
		Filters:    q.Filters,
		Query:      q,
	}

	if q.AIPrompt != "" && s.asker != nil {
		all, err := s.store.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books for assistant: %w", err)
		}
		page.AIResponse = s.asker.Ask(ctx, q.AIPrompt, all)
	}

	return page, nil
}

// Apply validates and executes a form action.
func (s *Service) Apply(ctx context.Context, form ActionForm) Result {
	form = form.Normalized()
	if err := form.Validate(); err != nil {
		return failed(err.Error())
	}

	id, _ := form.ID()
	description, err := s.apply(ctx, form, &id)
	s.record(ctx, form.Action, id, description, err)
	if err != nil {
		logger.WithComponent("catalog").
			WithError(err).
			WithField("action", form.Action).
			WithField("book_id", id).
			Error("Action error")
		return failed(MsgActionFailed)
	}

	return succeeded(form.Action)
}

func (s *Service) apply(ctx context.Context, form ActionForm, id *uint) (string, error) {
	switch form.Action {
	case ActionDelete:
		return fmt.Sprintf("Deleted book %d", *id), s.store.Delete(ctx, *id)
	case ActionCheckout:
		return fmt.Sprintf("Checked out book %d", *id), s.store.Checkout(ctx, *id, s.now().UTC())
	case ActionReturn:
		return fmt.Sprintf("Returned book %d", *id), s.store.Return(ctx, *id, s.now().UTC())
	case ActionEdit:
		return fmt.Sprintf("Updated book %d: %q by %s", *id, form.Title, form.Author),
			s.store.UpdateDetails(ctx, *id, form.Title, form.Author)
	case ActionCreate:
		book := &entities.Book{
			Title:     form.Title,
			Author:    form.Author,
			CreatedAt: s.now().UTC(),
		}
		err := s.store.Create(ctx, book)
		*id = book.ID
		return fmt.Sprintf("Created book %q by %s", form.Title, form.Author), err
	}
	return "", errors.New("unhandled action " + string(form.Action))
}

func (s *Service) record(ctx context.Context, action Action, id uint, description string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordBookAction(ctx, "book_"+string(action), id, description, err)
}

// Catalog returns every book, used by the command line assistant.
func (s *Service) Catalog(ctx context.Context) ([]entities.Book, error) {
	return s.store.All(ctx)
}
