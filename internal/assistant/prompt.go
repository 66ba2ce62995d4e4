package assistant

import (
	"fmt"
	"strings"

	"github.com/mrlokans/librarydesk/internal/entities"
)

// SystemPrompt frames every conversation with the model.
const SystemPrompt = "You are an assistant for a library management system. Help users find and understand information about the available books."

// FallbackResponse is shown whenever an answer could not be produced.
const FallbackResponse = "Sorry, I couldn't process your question at this time."

const catalogPreamble = "Here is the list of books in our library:\n\n"

// BuildContext renders the catalog as numbered lines, one book per line.
func BuildContext(books []entities.Book) string {
	lines := make([]string, 0, len(books))
	for i, b := range books {
		lines = append(lines, fmt.Sprintf("%d. \"%s\" by %s - %s", i+1, b.Title, b.Author, b.StatusLabel()))
	}
	return strings.Join(lines, "\n")
}

// BuildUserMessage combines the catalog context with the user's question.
func BuildUserMessage(context, prompt string) string {
	return catalogPreamble + context + "\n\nUser question: " + prompt
}

// Messages returns the chat sent to the model.
func Messages(context, prompt string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: BuildUserMessage(context, prompt)},
	}
}
