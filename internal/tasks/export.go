package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotobi/internal/exporters"
)

// Exporter writes a portable snapshot document.
type Exporter interface {
	Export(ctx context.Context) (exporters.ExportResult, error)
}

// ExportTask writes a backup of the whole collection in the background.
type ExportTask struct {
	// Trigger records what requested the export ("api", "schedule", ...).
	Trigger string `json:"trigger"`
}

// Config returns the queue configuration for export tasks.
func (t ExportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "export_snapshot",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportProcessor creates a processor function for ExportTask.
func ExportProcessor(exporter Exporter) backlite.QueueProcessor[ExportTask] {
	return func(ctx context.Context, task ExportTask) error {
		if exporter == nil {
			return fmt.Errorf("exporter not configured")
		}

		result, err := exporter.Export(ctx)
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}

		log.Printf("[TASK] Export (%s) wrote %d books to %s with %d warnings",
			task.Trigger, result.BooksExported, result.Path, len(result.Warnings))
		return nil
	}
}

// NewExportQueue creates a backlite queue for export tasks.
func NewExportQueue(exporter Exporter) backlite.Queue {
	return backlite.NewQueue(ExportProcessor(exporter))
}
