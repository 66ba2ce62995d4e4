// Package scheduler triggers recurring maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/logger"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CleanupEnqueuer starts one audit retention run.
type CleanupEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) error
}

// EnqueuerFunc adapts a function to CleanupEnqueuer.
type EnqueuerFunc func(ctx context.Context, retentionDays int) error

func (f EnqueuerFunc) EnqueueAuditCleanup(ctx context.Context, retentionDays int) error {
	return f(ctx, retentionDays)
}

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns when schedule fires next after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// AuditCleanupScheduler enqueues the audit retention job on a cron schedule.
type AuditCleanupScheduler struct {
	enqueuer      CleanupEnqueuer
	schedule      string
	retentionDays int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(enqueuer CleanupEnqueuer, cfg config.Audit) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      cfg.CleanupSchedule,
		retentionDays: cfg.RetentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron goroutine. An empty schedule
// disables the scheduler.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithComponent("scheduler")
	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		log.Info("Audit cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	log.WithField("schedule", s.schedule).WithField("next_run", next).Info("Audit cleanup scheduler: started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	logger.WithComponent("scheduler").Info("Audit cleanup scheduler: stopped")
}

// IsRunning reports whether the cron goroutine is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow enqueues a cleanup immediately.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	return s.enqueuer.EnqueueAuditCleanup(ctx, s.retentionDays)
}

func (s *AuditCleanupScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.RunNow(ctx); err != nil {
		logger.WithComponent("scheduler").WithError(err).Error("Audit cleanup could not be started")
	}
}
