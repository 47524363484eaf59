package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/importers"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Each controller takes only the slice it needs.

// BookReader provides read access to books.
type BookReader interface {
	GetBooks() ([]entities.Book, error)
	GetBook(id uint) (*entities.Book, error)
}

// BookWriter provides the everyday book mutations.
type BookWriter interface {
	AddBook(draft entities.Draft) (uint, error)
	UpdateProgress(id uint, pagesRead int, status entities.Status) error
	RecordProgress(id uint, pagesRead int) error
	UpdateDetails(id uint, details entities.Details) error
	EditBook(id uint, details entities.Details) error
	DeleteBook(id uint) error
	FetchCover(ctx context.Context, ref string) (string, error)
}

// StatisticsReader provides the collection aggregate.
type StatisticsReader interface {
	GetStatistics() (entities.Statistics, error)
}

// Transfer covers export, import and reset of the whole collection.
type Transfer interface {
	Export(ctx context.Context) (exporters.ExportResult, error)
	ExportDocument(ctx context.Context) (exporters.ExportResult, error)
	Import(ctx context.Context, data []byte) (importers.ImportResult, error)
	ResetAll() error
}

// Tracker is everything the router needs from the application core.
type Tracker interface {
	BookReader
	BookWriter
	StatisticsReader
	Transfer
}

// TaskQueue enqueues background work and reports on it.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// StoreHealth reports whether the database is reachable and its schema in place.
type StoreHealth interface {
	Ping() error
	Initialized() bool
}
