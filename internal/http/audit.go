package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/entities"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// ListEvents returns audit events, most recent first.
// GET /api/audit?type=book&limit=50&offset=0
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit := queryInt(c, "limit", defaultAuditLimit)
	if limit == 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	offset := queryInt(c, "offset", 0)

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	switch eventType := entities.AuditEventType(c.Query("type")); eventType {
	case "":
		events, total, err = ac.events.GetEvents(limit, offset)
	case entities.AuditEventBook, entities.AuditEventAssistant, entities.AuditEventMaintenance:
		events, total, err = ac.events.GetEventsByType(eventType, limit, offset)
	default:
		respondBadRequest(c, "unknown event type")
		return
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
