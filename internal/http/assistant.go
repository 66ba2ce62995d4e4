package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/catalog"
)

type AskRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

type AskResponse struct {
	Response string `json:"response"`
}

// AssistantController answers questions about the whole catalog.
type AssistantController struct {
	asker catalog.Asker
	books BookSource
}

func NewAssistantController(asker catalog.Asker, books BookSource) *AssistantController {
	return &AssistantController{asker: asker, books: books}
}

// Ask sends the question together with every book to the assistant.
// POST /api/assistant/ask
func (ac *AssistantController) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		respondBadRequest(c, "prompt is required")
		return
	}

	all, err := ac.books.All(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "load books for assistant")
		return
	}

	c.JSON(http.StatusOK, AskResponse{Response: ac.asker.Ask(c.Request.Context(), prompt, all)})
}
