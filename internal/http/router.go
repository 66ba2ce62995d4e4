package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	if cfg.Analytics.Enabled() {
		router.Use(AnalyticsContext(cfg.Analytics.ScriptURL))
	}
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.APIToken))
	}

	var flashes Flashes
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
		flashes = cfg.SessionManager
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	router.SetHTMLTemplate(loadTemplates())

	features := cfg.Features
	features.BasicAuth = cfg.AuthMiddleware != nil
	features.DemoMode = cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled()
	features.Analytics = cfg.Analytics.Enabled()
	health := NewHealthController(cfg.Database, cfg.Books, cfg.Version, features)
	booksController := NewBooksController(cfg.Catalog, cfg.Books, flashes)
	booksController.analytics = cfg.Analytics.ScriptTag()

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// UI routes
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/books")
	})
	router.GET("/books", booksController.BooksPage)
	router.POST("/books", booksController.Action)

	// Books API endpoints
	router.GET("/api/books", booksController.ListBooks)
	router.POST("/api/books", booksController.ApplyAction)
	router.GET("/api/books/stats", booksController.GetBookStats)

	if cfg.Asker != nil {
		assistantController := NewAssistantController(cfg.Asker, cfg.Books)
		router.POST("/api/assistant/ask", assistantController.Ask)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		if cfg.AuthMiddleware != nil {
			router.GET("/api/audit", cfg.AuthMiddleware.RequireLibrarian(), auditController.ListEvents)
		} else {
			router.GET("/api/audit", auditController.ListEvents)
		}
	}

	return router
}
