package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotobi/internal/audit"
)

const defaultImportRetentionDays = 30

// ImportDocumentPruner removes saved import documents.
type ImportDocumentPruner interface {
	Prune(ctx context.Context, cutoff time.Time, keepLatest int) (audit.PruneResult, error)
}

// PruneImportDocumentsTask deletes saved import documents last modified
// before Cutoff. The KeepLatest newest documents are kept whatever their age.
// The cutoff is fixed when the task is enqueued, so a retry removes the same
// set of files.
type PruneImportDocumentsTask struct {
	Cutoff     time.Time `json:"cutoff"`
	KeepLatest int       `json:"keep_latest"`
}

// NewPruneImportDocumentsTask builds a task that keeps retentionDays of
// import history (30 when not positive) plus the most recent document.
func NewPruneImportDocumentsTask(now time.Time, retentionDays int) PruneImportDocumentsTask {
	if retentionDays <= 0 {
		retentionDays = defaultImportRetentionDays
	}
	return PruneImportDocumentsTask{
		Cutoff:     now.AddDate(0, 0, -retentionDays),
		KeepLatest: 1,
	}
}

// Config returns the queue configuration for import document pruning.
func (t PruneImportDocumentsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_import_documents",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// PruneImportDocumentsProcessor creates a processor function for
// PruneImportDocumentsTask.
func PruneImportDocumentsProcessor(pruner ImportDocumentPruner) backlite.QueueProcessor[PruneImportDocumentsTask] {
	return func(ctx context.Context, task PruneImportDocumentsTask) error {
		if pruner == nil {
			return fmt.Errorf("import document pruner not configured")
		}
		if task.Cutoff.IsZero() {
			return fmt.Errorf("prune task has no cutoff")
		}

		result, err := pruner.Prune(ctx, task.Cutoff, task.KeepLatest)
		if err != nil {
			return fmt.Errorf("prune import documents (removed %d before failing): %w", result.Removed, err)
		}

		if result.Removed > 0 {
			log.Printf("[TASK] Pruned %d import documents from before %s (%d bytes freed, %d kept)",
				result.Removed, task.Cutoff.Format(time.DateOnly), result.FreedBytes, result.Kept)
		}
		return nil
	}
}

// NewPruneImportDocumentsQueue creates a backlite queue for import document
// pruning.
func NewPruneImportDocumentsQueue(pruner ImportDocumentPruner) backlite.Queue {
	return backlite.NewQueue(PruneImportDocumentsProcessor(pruner))
}
