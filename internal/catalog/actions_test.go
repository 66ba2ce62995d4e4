package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form ActionForm
		want error
	}{
		{"delete with id", ActionForm{Action: ActionDelete, BookID: "4"}, nil},
		{"delete without id", ActionForm{Action: ActionDelete}, ErrBookIDRequired},
		{"checkout with zero id", ActionForm{Action: ActionCheckout, BookID: "0"}, ErrBookIDRequired},
		{"return with garbage id", ActionForm{Action: ActionReturn, BookID: "abc"}, ErrBookIDRequired},
		{"return with negative id", ActionForm{Action: ActionReturn, BookID: "-2"}, ErrBookIDRequired},
		{"checkout with fractional id", ActionForm{Action: ActionCheckout, BookID: "1.5"}, ErrBookIDRequired},
		{"delete with exponent id", ActionForm{Action: ActionDelete, BookID: "1e3"}, ErrBookIDRequired},
		{"edit complete", ActionForm{Action: ActionEdit, BookID: "1", Title: "T", Author: "A"}, nil},
		{"edit missing title", ActionForm{Action: ActionEdit, BookID: "1", Author: "A"}, ErrTitleAuthorRequired},
		{"edit missing id", ActionForm{Action: ActionEdit, Title: "T", Author: "A"}, ErrEditIDRequired},
		{"edit missing everything reports fields first", ActionForm{Action: ActionEdit}, ErrTitleAuthorRequired},
		{"create complete", ActionForm{Action: ActionCreate, Title: "T", Author: "A"}, nil},
		{"create empty title", ActionForm{Action: ActionCreate, Author: "A"}, ErrTitleAuthorRequired},
		{"create empty author", ActionForm{Action: ActionCreate, Title: "T"}, ErrTitleAuthorRequired},
		{"unknown action", ActionForm{Action: "archive", BookID: "1"}, ErrInvalidAction},
		{"missing action", ActionForm{}, ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.form.Normalized().Validate())
		})
	}
}

func TestActionForm_Normalized(t *testing.T) {
	f := ActionForm{Action: " Create ", Title: "  Dune ", Author: " Frank Herbert  "}.Normalized()

	assert.Equal(t, ActionCreate, f.Action)
	assert.Equal(t, "Dune", f.Title)
	assert.Equal(t, "Frank Herbert", f.Author)
}

func TestActionForm_WhitespaceTitleIsRejected(t *testing.T) {
	f := ActionForm{Action: ActionCreate, Title: "   ", Author: "Someone"}.Normalized()
	assert.Equal(t, ErrTitleAuthorRequired, f.Validate())
}

func TestAction_SuccessMessage(t *testing.T) {
	assert.Equal(t, "Book deleted successfully", ActionDelete.SuccessMessage())
	assert.Equal(t, "Book checked out successfully", ActionCheckout.SuccessMessage())
	assert.Equal(t, "Book returned successfully", ActionReturn.SuccessMessage())
	assert.Equal(t, "Book updated successfully", ActionEdit.SuccessMessage())
	assert.Equal(t, "Book created successfully", ActionCreate.SuccessMessage())
	assert.Equal(t, "", Action("nope").SuccessMessage())
}
