package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
)

const (
	healthOK            = "ok"
	healthNotConfigured = "not configured"
)

// Features lists the optional parts of librarydesk that are switched on.
type Features struct {
	Assistant   bool   `json:"assistant"`
	AnswerCache string `json:"answer_cache,omitempty"`
	TaskQueue   bool   `json:"task_queue"`
	BasicAuth   bool   `json:"basic_auth"`
	DemoMode    bool   `json:"demo_mode"`
	Analytics   bool   `json:"analytics"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Time     string            `json:"time"`
	Version  string            `json:"version,omitempty"`
	Checks   map[string]string `json:"checks"`
	Catalog  *books.Stats      `json:"catalog,omitempty"`
	Features Features          `json:"features"`
}

// HealthController reports database reachability, catalog counters and
// which optional features are enabled.
type HealthController struct {
	db       *database.Database
	books    BookSource
	version  string
	features Features
}

func NewHealthController(db *database.Database, books BookSource, version string, features Features) *HealthController {
	return &HealthController{
		db:       db,
		books:    books,
		version:  version,
		features: features,
	}
}

// Status answers 503 when the database or the catalog cannot be read.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	health := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Version:  h.version,
		Checks:   map[string]string{"database": healthNotConfigured, "catalog": healthNotConfigured},
		Features: h.features,
	}
	fail := func(check string, err error) {
		health.Checks[check] = "error: " + err.Error()
		health.Status = "unhealthy"
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB.DB(); err != nil {
			fail("database", err)
		} else if err := sqlDB.PingContext(ctx); err != nil {
			fail("database", err)
		} else {
			health.Checks["database"] = healthOK
		}
	}

	if h.books != nil && health.Status == "healthy" {
		if stats, err := h.books.Stats(ctx); err != nil {
			fail("catalog", err)
		} else {
			health.Checks["catalog"] = healthOK
			health.Catalog = &stats
		}
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}

// Ping is a liveness probe that never touches storage.
// GET /ping
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
