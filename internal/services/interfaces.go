package services

import (
	"context"

	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/importers"
)

// BookReader provides read-only access to books and the statistics aggregate.
// Use this interface when you only need to query books.
type BookReader interface {
	GetBooks() ([]entities.Book, error)
	GetBook(id uint) (*entities.Book, error)
	GetStatistics() (entities.Statistics, error)
}

// BookWriter covers the everyday mutations issued by a single caller.
type BookWriter interface {
	AddBook(draft entities.Draft) (uint, error)
	UpdateProgress(id uint, pagesRead int, status entities.Status) error
	RecordProgress(id uint, pagesRead int) error
	UpdateDetails(id uint, details entities.Details) error
	EditBook(id uint, details entities.Details) error
	DeleteBook(id uint) error
	ResetAll() error
}

// BookStore is the full book store the tracker is built on.
type BookStore interface {
	BookReader
	BookWriter
	importers.Replacer
}

// SnapshotExporter produces portable documents.
type SnapshotExporter interface {
	BuildDocument(ctx context.Context) (exporters.ExportResult, error)
	Export(ctx context.Context) (exporters.ExportResult, error)
}

// SnapshotImporter applies portable documents.
type SnapshotImporter interface {
	Import(ctx context.Context, data []byte) (importers.ImportResult, error)
}

// DocumentAuditor keeps a copy of incoming import documents.
type DocumentAuditor interface {
	SaveDocument(data []byte) (string, error)
}

// CoverStore brings covers from outside into the managed cover area.
type CoverStore interface {
	Contains(ref string) bool
	CopyFrom(src string) (string, error)
	Fetch(ctx context.Context, url string) (string, error)
}
