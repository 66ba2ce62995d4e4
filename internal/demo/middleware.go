// Package demo implements the read-only demo mode.
package demo

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BlockedMessage is shown whenever demo mode rejects a change.
const BlockedMessage = "This action is disabled in demo mode"

// ContextKeyDemoMode stores the demo flag for template rendering.
const ContextKeyDemoMode = "demo_mode"

// Flasher stores a message for the next page load.
type Flasher interface {
	PutFlash(ctx context.Context, kind, message string)
}

// Middleware blocks catalog mutations in demo mode.
// Read-only operations are always allowed, and so is asking the assistant,
// which does not change the catalog.
type Middleware struct {
	enabled bool
	flasher Flasher
}

// NewMiddleware creates a demo mode middleware. flasher may be nil, in which
// case blocked form posts get a plain 403.
func NewMiddleware(enabled bool, flasher Flasher) *Middleware {
	return &Middleware{enabled: enabled, flasher: flasher}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func isAllowedPath(path string) bool {
	allowedPaths := []string{
		"/api/assistant/",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// respondBlocked answers JSON clients with 403 and sends form posts back to
// the page with a flash message.
func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     BlockedMessage,
			"demo_mode": true,
		})
		return
	}

	if m.flasher != nil {
		m.flasher.PutFlash(c.Request.Context(), "error", BlockedMessage)
		target := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			target += "?" + raw
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
		return
	}

	c.String(http.StatusForbidden, BlockedMessage)
	c.Abort()
}

// InjectContext adds the demo flag to the context for template rendering.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}
