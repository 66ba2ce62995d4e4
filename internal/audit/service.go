// Package audit records what happened to the catalog and who asked the
// assistant what, on top of the audit_events table.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/librarydesk/internal/database/audit"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logger"
)

const maxFieldLen = 500

type requestInfoKey struct{}

// RequestInfo is the client data attached to events recorded during a request.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

// WithRequestInfo stores client data in ctx for later events.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func requestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			logger.WithComponent("audit").WithError(err).WithField("action", event.Action).Error("Failed to log audit event")
		}
	}()
}

// Wait blocks until every LogAsync call has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// RecordBookAction records a catalog mutation.
func (s *Service) RecordBookAction(ctx context.Context, action string, bookID uint, description string, err error) {
	event := newEvent(ctx, entities.AuditEventBook, action, description, err)
	if bookID != 0 {
		event.EntityID = &bookID
	}
	s.LogAsync(event)
}

// RecordQuestion records a question sent to the assistant. Only the length of
// the prompt is kept.
func (s *Service) RecordQuestion(ctx context.Context, prompt string, err error) {
	description := fmt.Sprintf("Asked the assistant a %d character question", len([]rune(prompt)))
	s.LogAsync(newEvent(ctx, entities.AuditEventAssistant, "assistant_ask", description, err))
}

// LogCleanup records a retention cleanup run.
func (s *Service) LogCleanup(deleted int64, err error) {
	description := fmt.Sprintf("Deleted %d audit events", deleted)
	s.LogAsync(newEvent(context.Background(), entities.AuditEventMaintenance, "audit_cleanup", description, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func newEvent(ctx context.Context, eventType entities.AuditEventType, action, description string, err error) *entities.AuditEvent {
	info := requestInfoFrom(ctx)
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, maxFieldLen),
		IPAddress:   info.IPAddress,
		UserAgent:   truncate(info.UserAgent, maxFieldLen),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxFieldLen)
	}
	return event
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
