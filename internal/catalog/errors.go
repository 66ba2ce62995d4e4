package catalog

import "errors"

// Validation errors. Their messages are shown to the user as-is.
var (
	ErrBookIDRequired      = errors.New("Book ID is required")
	ErrEditIDRequired      = errors.New("Book ID is required for editing")
	ErrTitleAuthorRequired = errors.New("Title and author are required")
	ErrInvalidAction       = errors.New("Invalid action")
)

// Generic failure messages for store errors, which are logged but not exposed.
const (
	MsgActionFailed = "Failed to process action"
	MsgLoadFailed   = "Failed to load books"
)
