package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db     *database.Database
	repo   *books.Repository
	router *gin.Engine
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "librarydesk.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupApp(t *testing.T, withSessions bool) *testApp {
	t.Helper()
	db := setupTestDB(t)
	repo := books.NewRepository(db.DB)

	cfg := RouterConfig{
		Catalog:  catalog.NewService(repo, nil),
		Books:    repo,
		Database: db,
		Version:  "test",
	}
	if withSessions {
		sm, err := auth.NewSessionManager(nil, config.Auth{})
		require.NoError(t, err)
		cfg.SessionManager = sm
	}

	return &testApp{db: db, repo: repo, router: NewRouter(cfg)}
}

func (a *testApp) seed(t *testing.T, titles ...string) []entities.Book {
	t.Helper()
	var created []entities.Book
	for _, title := range titles {
		b := entities.Book{Title: title, Author: "Author of " + title}
		require.NoError(t, a.repo.Create(context.Background(), &b))
		created = append(created, b)
	}
	return created
}

func (a *testApp) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestRootRedirectsToBooks(t *testing.T) {
	app := setupApp(t, false)

	w := app.get("/")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/books", w.Header().Get("Location"))
}

func TestBooksPage(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		app := setupApp(t, false)

		w := app.get("/books")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books found")
		assert.Contains(t, w.Body.String(), "Showing 0 of 0 books")
		assert.Contains(t, w.Body.String(), "Add New Book")
	})

	t.Run("lists books with status and dates", func(t *testing.T) {
		app := setupApp(t, false)
		app.seed(t, "Dune", "Emma")

		w := app.get("/books?sort=title&dir=asc")
		body := w.Body.String()

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, body, "Dune")
		assert.Contains(t, body, "Author of Emma")
		assert.Contains(t, body, "Available")
		assert.Contains(t, body, "—", "missing checkout dates render as a dash")
		assert.Contains(t, body, "Showing 2 of 2 books")
		assert.Less(t, strings.Index(body, "Dune"), strings.Index(body, "Emma"))
	})

	t.Run("paginates", func(t *testing.T) {
		app := setupApp(t, false)
		var titles []string
		for i := 0; i < 12; i++ {
			titles = append(titles, "Book "+string(rune('A'+i)))
		}
		app.seed(t, titles...)

		first := app.get("/books").Body.String()
		assert.Contains(t, first, "Showing 10 of 12 books")
		assert.Contains(t, first, ">Next<")
		assert.NotContains(t, first, ">Previous<")

		second := app.get("/books?page=2").Body.String()
		assert.Contains(t, second, "Showing 2 of 12 books")
		assert.Contains(t, second, ">Previous<")
		assert.Contains(t, second, "Page 2 of 2")
	})

	t.Run("edit toggle renders the inline form", func(t *testing.T) {
		app := setupApp(t, false)
		created := app.seed(t, "Dune")

		w := app.get("/books?edit=" + itoa(created[0].ID))

		assert.Contains(t, w.Body.String(), `class="edit-row"`)
		assert.Contains(t, w.Body.String(), `value="Dune"`)
	})

	t.Run("create toggle renders the inline form", func(t *testing.T) {
		app := setupApp(t, false)

		assert.NotContains(t, app.get("/books").Body.String(), `class="create-row"`)
		assert.Contains(t, app.get("/books?create=1").Body.String(), `class="create-row"`)
	})
}

func TestBooksAction_RedirectsWithFlash(t *testing.T) {
	app := setupApp(t, true)

	w := app.postForm("/books?sort=title&create=1", url.Values{
		"_action": {"create"},
		"title":   {"Dune"},
		"author":  {"Frank Herbert"},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/books?sort=title", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	page := app.get("/books?sort=title", cookies...)
	assert.Contains(t, page.Body.String(), "Book created successfully")
	assert.Contains(t, page.Body.String(), "Frank Herbert")

	again := app.get("/books?sort=title", cookies...)
	assert.NotContains(t, again.Body.String(), "Book created successfully", "flash is shown once")
}

func TestBooksAction_ValidationErrorFlash(t *testing.T) {
	app := setupApp(t, true)

	w := app.postForm("/books", url.Values{"_action": {"create"}, "title": {"Dune"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/books", w.Header().Get("Location"))

	page := app.get("/books", w.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "Title and author are required")
}

func TestBooksAction_CheckoutAndReturn(t *testing.T) {
	app := setupApp(t, true)
	created := app.seed(t, "Dune")
	id := itoa(created[0].ID)

	app.postForm("/books", url.Values{"_action": {"checkout"}, "bookId": {id}})
	got, err := app.repo.GetByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedOut)
	assert.NotNil(t, got.LastCheckedOutAt)

	app.postForm("/books", url.Values{"_action": {"return"}, "bookId": {id}})
	got, err = app.repo.GetByID(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsCheckedOut)
	assert.NotNil(t, got.LastCheckedInAt)
}

func TestBooksAction_WithoutSessionsRendersResult(t *testing.T) {
	app := setupApp(t, false)

	w := app.postForm("/books", url.Values{"_action": {"delete"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Book ID is required")
}

func TestListBooksAPI(t *testing.T) {
	app := setupApp(t, false)
	app.seed(t, "Dune", "Emma", "Persuasion")

	w := app.get("/api/books?search=e&field=title&sort=title&dir=asc")
	require.Equal(t, http.StatusOK, w.Code)

	var response BooksListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Books, 3)
	assert.Equal(t, "Dune", response.Books[0].Title)
	assert.Equal(t, int64(3), response.Pagination.TotalBooks)
	assert.Equal(t, 1, response.Pagination.TotalPages)
	assert.Equal(t, catalog.SearchTitle, response.Filters.Field)
	assert.Empty(t, response.AIResponse)
}

type failingCatalog struct {
	result catalog.Result
}

func (f failingCatalog) Load(context.Context, catalog.ListQuery) (*catalog.Page, error) {
	return catalog.EmptyPage(catalog.MsgLoadFailed), errors.New("database is locked")
}

func (f failingCatalog) Apply(context.Context, catalog.ActionForm) catalog.Result {
	return f.result
}

type failingBooks struct{}

func (failingBooks) All(context.Context) ([]entities.Book, error) {
	return nil, errors.New("database is locked")
}

func (failingBooks) Stats(context.Context) (books.Stats, error) {
	return books.Stats{}, errors.New("database is locked")
}

func TestListBooksAPI_LoadError(t *testing.T) {
	router := NewRouter(RouterConfig{Catalog: failingCatalog{}, Books: failingBooks{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load books"}`, w.Body.String())
}

func TestBooksPage_LoadErrorBanner(t *testing.T) {
	router := NewRouter(RouterConfig{Catalog: failingCatalog{}, Books: failingBooks{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load books")
	assert.Contains(t, w.Body.String(), "No books found")
}

func TestApplyActionAPI(t *testing.T) {
	t.Run("json create", func(t *testing.T) {
		app := setupApp(t, false)

		req := httptest.NewRequest(http.MethodPost, "/api/books",
			strings.NewReader(`{"_action":"create","title":"Dune","author":"Frank Herbert"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Book created successfully"}`, w.Body.String())

		stats, err := app.repo.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Total)
	})

	t.Run("form validation error", func(t *testing.T) {
		app := setupApp(t, false)

		w := app.postForm("/api/books", url.Values{"_action": {"shelve"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid action"}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Catalog: failingCatalog{result: catalog.Result{Error: catalog.MsgActionFailed}},
			Books:   failingBooks{},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader("_action=delete&bookId=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetBookStats(t *testing.T) {
	app := setupApp(t, false)
	created := app.seed(t, "Dune", "Emma")
	require.NoError(t, app.repo.Checkout(context.Background(), created[1].ID, created[1].CreatedAt))

	w := app.get("/api/books/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2,"checked_out":1,"available":1}`, w.Body.String())
}

func TestGetBookStats_Error(t *testing.T) {
	router := NewRouter(RouterConfig{Catalog: failingCatalog{}, Books: failingBooks{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestCSRFProtectsForms(t *testing.T) {
	db := setupTestDB(t)
	repo := books.NewRepository(db.DB)
	router := NewRouter(RouterConfig{
		Catalog:    catalog.NewService(repo, nil),
		Books:      repo,
		CSRFSecret: auth.SecretKey("test-secret"),
		APIToken:   "api-token",
	})

	t.Run("form post without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("_action=create&title=a&author=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("api post with bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"_action":"create","title":"a","author":"b"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer api-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
