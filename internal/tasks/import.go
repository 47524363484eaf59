package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotobi/internal/importers"
)

// FileImporter applies a portable document stored on disk.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (importers.ImportResult, error)
}

// ImportTask replaces the collection with the document at Path.
type ImportTask struct {
	Path string `json:"path"`
}

// Config returns the queue configuration for import tasks. Imports replace
// the whole collection, so a failed one is never retried automatically.
func (t ImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_snapshot",
		MaxAttempts: 1,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportProcessor creates a processor function for ImportTask.
func ImportProcessor(importer FileImporter) backlite.QueueProcessor[ImportTask] {
	return func(ctx context.Context, task ImportTask) error {
		if importer == nil {
			return fmt.Errorf("importer not configured")
		}
		if task.Path == "" {
			return fmt.Errorf("import task has no path")
		}

		result, err := importer.ImportFile(ctx, task.Path)
		if err != nil {
			return fmt.Errorf("import %s: %w", task.Path, err)
		}

		log.Printf("[TASK] Imported %d books from %s (%d covers restored, %d warnings)",
			result.BooksImported, task.Path, result.CoversRestored, len(result.Warnings))
		return nil
	}
}

// NewImportQueue creates a backlite queue for import tasks.
func NewImportQueue(importer FileImporter) backlite.Queue {
	return backlite.NewQueue(ImportProcessor(importer))
}
