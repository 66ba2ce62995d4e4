package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/librarydesk/internal/entities"
)

func TestBuildContext(t *testing.T) {
	books := []entities.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Emma", Author: "Jane Austen", IsCheckedOut: true},
	}

	got := BuildContext(books)

	assert.Equal(t, "1. \"Dune\" by Frank Herbert - Available\n2. \"Emma\" by Jane Austen - Checked Out", got)
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
}

func TestBuildUserMessage(t *testing.T) {
	got := BuildUserMessage("1. \"Dune\" by Frank Herbert - Available", "What can I borrow?")

	assert.Equal(t,
		"Here is the list of books in our library:\n\n1. \"Dune\" by Frank Herbert - Available\n\nUser question: What can I borrow?",
		got)
}

func TestMessages(t *testing.T) {
	msgs := Messages("ctx", "q")

	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: BuildUserMessage("ctx", "q")},
	}, msgs)
}
