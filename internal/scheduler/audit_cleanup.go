// Package scheduler runs periodic maintenance jobs on cron schedules,
// enqueueing the actual work onto the task queue.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/tiendatech/storefront/internal/config"
	"github.com/tiendatech/storefront/internal/tasks"
)

// AuditCleanupScheduler periodically enqueues an audit retention cleanup task.
type AuditCleanupScheduler struct {
	taskClient *tasks.Client
	cfg        config.Audit

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a new scheduler instance.
func NewAuditCleanupScheduler(taskClient *tasks.Client, cfg config.Audit) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.CleanupCron, s.enqueueCleanup)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.CleanupCron, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s' (retention %d days)",
		s.cfg.CleanupCron, s.cfg.RetentionDays)
	return nil
}

// Stop halts the scheduler, waiting for a running enqueue to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Audit cleanup scheduler: stopped")
}

func (s *AuditCleanupScheduler) enqueueCleanup() {
	_, err := s.taskClient.Add(tasks.CleanupAuditEventsTask{
		RetentionDays: s.cfg.RetentionDays,
	}).Save()
	if err != nil {
		log.Printf("Audit cleanup scheduler: failed to enqueue cleanup task: %v", err)
	}
}
