package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarydesk/internal/logger"
)

const defaultRetentionDays = 30

// AuditEventCleaner deletes old audit events and records that it did.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogCleanup(deleted int64, err error)
}

// CleanupAuditEventsTask removes audit events older than the configured retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RunAuditCleanup deletes events older than retentionDays (30 when unset).
// It is the body of the queue processor and also runs inline when the
// queue is disabled.
func RunAuditCleanup(ctx context.Context, cleaner AuditEventCleaner, retentionDays int) error {
	if cleaner == nil {
		return errors.New("audit event cleaner not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	deleted, err := cleaner.DeleteOldEvents(retention)
	cleaner.LogCleanup(deleted, err)
	if err != nil {
		return fmt.Errorf("cleanup audit events: %w", err)
	}

	logger.WithComponent("tasks").
		WithField("deleted", deleted).
		WithField("retention_days", retentionDays).
		Info("Cleaned up audit events")
	return nil
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		return RunAuditCleanup(ctx, cleaner, task.RetentionDays)
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
