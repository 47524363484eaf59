package exporters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/kotobi/internal/covers"
	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/utils"
)

// SnapshotExporter writes the whole collection as a portable JSON document.
type SnapshotExporter struct {
	books     BookSource
	covers    CoverSource
	exportDir string
	prefix    string
	now       func() time.Time
}

func NewSnapshotExporter(books BookSource, coverSource CoverSource, exportDir, prefix string) *SnapshotExporter {
	return &SnapshotExporter{
		books:     books,
		covers:    coverSource,
		exportDir: exportDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// BuildDocument snapshots books and statistics. Covers stored in the managed
// area are embedded; a cover that cannot be read is exported as a plain
// reference and reported as a warning.
func (e *SnapshotExporter) BuildDocument(ctx context.Context) (ExportResult, error) {
	books, err := e.books.GetBooks()
	if err != nil {
		return ExportResult{}, err
	}
	stats, err := e.books.GetStatistics()
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{
		Warnings: []string{},
		Document: entities.Document{
			Version:    entities.FormatVersion,
			ExportedAt: e.now().UTC().Format(time.RFC3339),
			Books:      make([]entities.ExportedBook, 0, len(books)),
			Statistics: stats,
		},
	}

	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return ExportResult{}, err
		}

		exported := entities.ExportedBook{
			ID:         book.ID,
			Title:      book.Title,
			Cover:      book.Cover,
			TotalPages: book.TotalPages,
			PagesRead:  book.PagesRead,
			Status:     book.Status,
			Rating:     book.Rating,
			CreatedAt:  book.CreatedAt.UTC().Format(time.RFC3339Nano),
			UpdatedAt:  book.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}

		if e.covers != nil && e.covers.Contains(book.Cover) {
			data, err := e.covers.Read(book.Cover)
			if err != nil {
				warning := fmt.Sprintf("book %q: cover not embedded: %v", book.Title, err)
				log.Printf("Export: %s", warning)
				result.Warnings = append(result.Warnings, warning)
			} else {
				exported.CoverData = &entities.CoverData{
					Base64: base64.StdEncoding.EncodeToString(data),
					Ext:    covers.ExtensionHint(book.Cover, data),
				}
				result.CoversEmbedded++
			}
		}

		result.Document.Books = append(result.Document.Books, exported)
	}

	result.BooksExported = len(result.Document.Books)
	return result, nil
}

// Export builds the document and writes it to a new file in the export
// directory named after the local export time.
func (e *SnapshotExporter) Export(ctx context.Context) (ExportResult, error) {
	result, err := e.BuildDocument(ctx)
	if err != nil {
		return ExportResult{}, err
	}

	payload, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: encode document: %v", entities.ErrIO, err)
	}

	if err := ctx.Err(); err != nil {
		return ExportResult{}, err
	}

	if err := os.MkdirAll(e.exportDir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("%w: create export dir: %v", entities.ErrIO, err)
	}

	path, err := e.writeUnique(e.now(), payload)
	if err != nil {
		return ExportResult{}, err
	}

	result.Path = path
	log.Printf("Export: wrote %d books (%d covers embedded) to %s", result.BooksExported, result.CoversEmbedded, path)
	return result, nil
}

// writeUnique creates the backup file exclusively. If the timestamped name is
// taken, a short random suffix is added.
func (e *SnapshotExporter) writeUnique(at time.Time, payload []byte) (string, error) {
	local := at.Local()
	path := filepath.Join(e.exportDir, utils.BackupFilename(e.prefix, local))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		suffix := uuid.NewString()[:8]
		path = filepath.Join(e.exportDir, utils.SuffixedBackupFilename(e.prefix, local, suffix))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("%w: create export file: %v", entities.ErrIO, err)
	}

	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: write export file: %v", entities.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: write export file: %v", entities.ErrIO, err)
	}
	return path, nil
}
