package http

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	dateLayout = "2006-01-02"
	noDate     = "—"
)

// formatDate renders a date column; nil and zero times render as a dash.
func formatDate(t any) string {
	switch v := t.(type) {
	case *time.Time:
		if v == nil || v.IsZero() {
			return noDate
		}
		return v.Format(dateLayout)
	case time.Time:
		if v.IsZero() {
			return noDate
		}
		return v.Format(dateLayout)
	}
	return noDate
}

func loadTemplates() *template.Template {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

type viewState struct {
	EditID     uint
	ShowCreate bool
	Flash      *auth.Flash
	CSRFToken  string
	DemoMode   bool
	Analytics  template.HTML
}

// booksView is the data the books template renders.
type booksView struct {
	viewState
	Books      []entities.Book
	Pagination catalog.Pagination
	Filters    catalog.Filters
	AIPrompt   string
	AIResponse string
	Error      string

	FormAction  string
	CreateURL   string
	CancelURL   string
	PreviousURL string
	NextURL     string
	EditURLs    map[uint]string

	CSRFField      string
	SearchFields   []catalog.Option
	SortFields     []catalog.Option
	SortDirections []catalog.Option
}

func newBooksView(page *catalog.Page, state viewState) booksView {
	q := page.Query
	base := "/books?" + q.Values().Encode()

	v := booksView{
		viewState:      state,
		Books:          page.Books,
		Pagination:     page.Pagination,
		Filters:        page.Filters,
		AIPrompt:       q.AIPrompt,
		AIResponse:     page.AIResponse,
		Error:          page.Error,
		FormAction:     base,
		CreateURL:      base + "&" + paramCreate + "=1",
		CancelURL:      base,
		EditURLs:       make(map[uint]string, len(page.Books)),
		CSRFField:      auth.CSRFFormField,
		SearchFields:   catalog.SearchFieldOptions,
		SortFields:     catalog.SortOptions,
		SortDirections: catalog.DirectionOptions,
	}
	if page.Pagination.HasPrevious() {
		v.PreviousURL = "/books" + q.PageURL(page.Pagination.CurrentPage-1)
	}
	if page.Pagination.HasNext() {
		v.NextURL = "/books" + q.PageURL(page.Pagination.CurrentPage+1)
	}
	for _, b := range page.Books {
		v.EditURLs[b.ID] = base + "&" + paramEdit + "=" + strconv.FormatUint(uint64(b.ID), 10)
	}
	return v
}
