// Package scheduler runs automatic backups of the book collection on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/tasks"
)

// Exporter writes a portable snapshot document.
type Exporter interface {
	Export(ctx context.Context) (exporters.ExportResult, error)
}

// TaskEnqueuer hands work to the background task queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// RunStatus describes the outcome of the most recent scheduled backup.
type RunStatus struct {
	At      time.Time `json:"at"`
	Path    string    `json:"path,omitempty"`
	TaskID  string    `json:"task_id,omitempty"`
	Message string    `json:"message"`
	Failed  bool      `json:"failed"`
}

// BackupScheduler manages periodic exports of the whole collection. When a
// task queue is configured the export is enqueued there; otherwise it runs
// inline on the cron goroutine.
type BackupScheduler struct {
	exporter Exporter
	queue    TaskEnqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	last       *RunStatus
}

// NewBackupScheduler creates a new scheduler instance. queue may be nil.
func NewBackupScheduler(exporter Exporter, queue TaskEnqueuer, schedule string) *BackupScheduler {
	return &BackupScheduler{
		exporter: exporter,
		queue:    queue,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runBackup(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.schedule, time.Now())
	log.Printf("Backup scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, DescribeSchedule(s.schedule), nextRun)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// A running job records its status under mu, so wait without holding it
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	if cancel != nil {
		cancel()
	}
	log.Printf("Backup scheduler: stopped")
}

// RunNow triggers an immediate backup and waits for it to be written or enqueued.
func (s *BackupScheduler) RunNow(ctx context.Context) RunStatus {
	return s.runBackup(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next backup will occur
func (s *BackupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// LastRun returns the outcome of the most recent backup, or nil if none ran yet.
func (s *BackupScheduler) LastRun() *RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	status := *s.last
	return &status
}

func (s *BackupScheduler) runBackup(ctx context.Context) RunStatus {
	status := RunStatus{At: time.Now()}

	switch {
	case s.queue != nil:
		taskID, err := s.queue.Enqueue(tasks.ExportTask{Trigger: "schedule"})
		if err != nil {
			status.Failed = true
			status.Message = fmt.Sprintf("Failed to enqueue backup: %v", err)
		} else {
			status.TaskID = taskID
			status.Message = "Backup enqueued"
		}
	case s.exporter != nil:
		result, err := s.exporter.Export(ctx)
		if err != nil {
			status.Failed = true
			status.Message = fmt.Sprintf("Backup failed: %v", err)
		} else {
			status.Path = result.Path
			status.Message = fmt.Sprintf("Exported %d books (%d covers embedded)", result.BooksExported, result.CoversEmbedded)
		}
	default:
		status.Failed = true
		status.Message = "No exporter configured"
	}

	log.Printf("Backup scheduler: %s", status.Message)

	s.mu.Lock()
	s.last = &status
	s.mu.Unlock()
	return status
}
