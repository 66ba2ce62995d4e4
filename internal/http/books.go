package http

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/demo"
	"github.com/mrlokans/librarydesk/internal/entities"
)

// Query parameters that only toggle the inline forms. They are dropped from
// the redirect after a form post.
const (
	paramEdit   = "edit"
	paramCreate = "create"
)

// BooksController serves the books page and its JSON twin.
type BooksController struct {
	catalog Catalog
	books   BookSource
	flashes Flashes

	analytics template.HTML
}

// NewBooksController creates the controller. flashes may be nil, in which
// case form posts render the page directly instead of redirecting.
func NewBooksController(catalog Catalog, books BookSource, flashes Flashes) *BooksController {
	return &BooksController{
		catalog: catalog,
		books:   books,
		flashes: flashes,
	}
}

// BooksPage renders the catalog.
// GET /books
func (bc *BooksController) BooksPage(c *gin.Context) {
	q := catalog.ParseListQuery(c.Request.URL.Query())
	page, _ := bc.catalog.Load(c.Request.Context(), q)

	var flash *auth.Flash
	if bc.flashes != nil {
		flash = bc.flashes.PopFlash(c.Request.Context())
	}

	c.HTML(http.StatusOK, "books", bc.view(c, page, flash))
}

// Action applies a form action and redirects back to the page.
// POST /books
func (bc *BooksController) Action(c *gin.Context) {
	var form catalog.ActionForm
	if err := c.ShouldBind(&form); err != nil {
		c.Error(err)
	}
	result := bc.catalog.Apply(c.Request.Context(), form)

	flash := &auth.Flash{Kind: auth.FlashSuccess, Message: result.Message}
	if !result.Success {
		flash = &auth.Flash{Kind: auth.FlashError, Message: result.Error}
	}

	if bc.flashes == nil {
		q := catalog.ParseListQuery(c.Request.URL.Query())
		page, _ := bc.catalog.Load(c.Request.Context(), q)
		c.HTML(resultStatus(result), "books", bc.view(c, page, flash))
		return
	}

	bc.flashes.PutFlash(c.Request.Context(), flash.Kind, flash.Message)
	c.Redirect(http.StatusSeeOther, booksURL(c.Request.URL.Query()))
}

// booksURL rebuilds the page link from the submitted query, without the
// inline form toggles.
func booksURL(values url.Values) string {
	values.Del(paramEdit)
	values.Del(paramCreate)
	if encoded := values.Encode(); encoded != "" {
		return "/books?" + encoded
	}
	return "/books"
}

func (bc *BooksController) view(c *gin.Context, page *catalog.Page, flash *auth.Flash) booksView {
	editID, _ := strconv.ParseUint(c.Query(paramEdit), 10, 32)
	return newBooksView(page, viewState{
		EditID:     uint(editID),
		ShowCreate: c.Query(paramCreate) != "",
		Flash:      flash,
		CSRFToken:  auth.GetCSRFToken(c),
		DemoMode:   c.GetBool(demo.ContextKeyDemoMode),
		Analytics:  bc.analytics,
	})
}

// BooksListResponse is the JSON form of one catalog page.
type BooksListResponse struct {
	Books      []entities.Book    `json:"books"`
	Pagination catalog.Pagination `json:"pagination"`
	Filters    catalog.Filters    `json:"filters"`
	AIResponse string             `json:"ai_response,omitempty"`
}

// ListBooks returns one page of books as JSON.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	q := catalog.ParseListQuery(c.Request.URL.Query())
	page, err := bc.catalog.Load(c.Request.Context(), q)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: page.Error})
		return
	}

	c.JSON(http.StatusOK, BooksListResponse{
		Books:      page.Books,
		Pagination: page.Pagination,
		Filters:    page.Filters,
		AIResponse: page.AIResponse,
	})
}

// ApplyAction runs a form action posted as form data or JSON.
// POST /api/books
func (bc *BooksController) ApplyAction(c *gin.Context) {
	var form catalog.ActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result := bc.catalog.Apply(c.Request.Context(), form)
	c.JSON(resultStatus(result), result)
}

// GetBookStats returns catalog counters.
// GET /api/books/stats
func (bc *BooksController) GetBookStats(c *gin.Context) {
	stats, err := bc.books.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func resultStatus(result catalog.Result) int {
	switch {
	case result.Success:
		return http.StatusOK
	case result.Error == catalog.MsgActionFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
