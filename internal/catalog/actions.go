package catalog

import (
	"strconv"
	"strings"
)

// Action is the value of the "_action" form field.
type Action string

const (
	ActionDelete   Action = "delete"
	ActionCheckout Action = "checkout"
	ActionReturn   Action = "return"
	ActionEdit     Action = "edit"
	ActionCreate   Action = "create"
)

var successMessages = map[Action]string{
	ActionDelete:   "Book deleted successfully",
	ActionCheckout: "Book checked out successfully",
	ActionReturn:   "Book returned successfully",
	ActionEdit:     "Book updated successfully",
	ActionCreate:   "Book created successfully",
}

// SuccessMessage is the flash text for a completed action.
func (a Action) SuccessMessage() string {
	return successMessages[a]
}

// ActionForm is a submitted mutation. BookID is kept raw so that
// validation can distinguish missing from malformed ids the same way.
type ActionForm struct {
	Action Action `form:"_action" json:"_action"`
	BookID string `form:"bookId" json:"bookId"`
	Title  string `form:"title" json:"title"`
	Author string `form:"author" json:"author"`
}

// ID parses BookID as a base-10 integer. Zero, negative, fractional and
// non-numeric values report false.
func (f ActionForm) ID() (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(f.BookID), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Normalized trims the free-text fields.
func (f ActionForm) Normalized() ActionForm {
	f.Action = Action(strings.ToLower(strings.TrimSpace(string(f.Action))))
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	return f
}

// Validate checks the fields each action requires.
func (f ActionForm) Validate() error {
	switch f.Action {
	case ActionDelete, ActionCheckout, ActionReturn:
		if _, ok := f.ID(); !ok {
			return ErrBookIDRequired
		}
	case ActionEdit:
		if f.Title == "" || f.Author == "" {
			return ErrTitleAuthorRequired
		}
		if _, ok := f.ID(); !ok {
			return ErrEditIDRequired
		}
	case ActionCreate:
		if f.Title == "" || f.Author == "" {
			return ErrTitleAuthorRequired
		}
	default:
		return ErrInvalidAction
	}
	return nil
}

// Result is the outcome of an action as reported to the page.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func succeeded(a Action) Result {
	return Result{Success: true, Message: a.SuccessMessage()}
}

func failed(msg string) Result {
	return Result{Success: false, Error: msg}
}
