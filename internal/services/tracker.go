package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mrlokans/kotobi/internal/audit"
	"github.com/mrlokans/kotobi/internal/config"
	"github.com/mrlokans/kotobi/internal/covers"
	"github.com/mrlokans/kotobi/internal/database"
	"github.com/mrlokans/kotobi/internal/database/books"
	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/importers"
)

// Tracker is the single handle through which every front end (HTTP, CLI,
// background tasks, the backup scheduler) reaches the reading tracker.
type Tracker struct {
	store    BookStore
	covers   CoverStore
	exporter SnapshotExporter
	importer SnapshotImporter
	auditor  DocumentAuditor
	db       *database.Database
}

// NewTracker assembles a tracker from its parts. auditor and coverStore may be nil.
func NewTracker(store BookStore, coverStore CoverStore, exporter SnapshotExporter, importer SnapshotImporter, auditor DocumentAuditor) *Tracker {
	return &Tracker{
		store:    store,
		covers:   coverStore,
		exporter: exporter,
		importer: importer,
		auditor:  auditor,
	}
}

// Open builds a tracker from configuration: it opens and initializes the
// database, prepares the cover area and wires exporter, importer and auditor.
// An initialization failure is returned; no half-open tracker is handed out.
func Open(cfg *config.Config) (*Tracker, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	coverStore, err := covers.NewStore(cfg.Covers.Dir, cfg.Covers.FetchTimeout)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", entities.ErrInitialization, err)
	}

	repo := books.NewRepository(db)
	tracker := NewTracker(
		repo,
		coverStore,
		exporters.NewSnapshotExporter(repo, coverStore, cfg.Export.Dir, cfg.Export.Prefix),
		importers.NewSnapshotImporter(repo, coverStore),
		audit.NewAuditor(cfg.Audit.Dir),
	)
	tracker.db = db
	return tracker, nil
}

// Close releases the database if the tracker owns it.
func (t *Tracker) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Database returns the underlying database when the tracker was built by Open.
func (t *Tracker) Database() *database.Database {
	return t.db
}

func (t *Tracker) AddBook(draft entities.Draft) (uint, error) {
	return t.store.AddBook(draft)
}

func (t *Tracker) GetBooks() ([]entities.Book, error) {
	return t.store.GetBooks()
}

func (t *Tracker) GetBook(id uint) (*entities.Book, error) {
	return t.store.GetBook(id)
}

// UpdateProgress stores pagesRead and, when given, status. An empty status
// keeps the stored one.
func (t *Tracker) UpdateProgress(id uint, pagesRead int, status entities.Status) error {
	return t.store.UpdateProgress(id, pagesRead, status)
}

// RecordProgress stores pagesRead together with the status that matches it,
// keeping the book's status consistent with its progress.
func (t *Tracker) RecordProgress(id uint, pagesRead int) error {
	return t.store.RecordProgress(id, pagesRead)
}

func (t *Tracker) UpdateDetails(id uint, details entities.Details) error {
	return t.store.UpdateDetails(id, details)
}

// EditBook stores new details and re-derives the status from progress.
// Shrinking totalPages below the pages already read restarts progress at 0.
func (t *Tracker) EditBook(id uint, details entities.Details) error {
	return t.store.EditBook(id, details)
}

func (t *Tracker) DeleteBook(id uint) error {
	return t.store.DeleteBook(id)
}

func (t *Tracker) GetStatistics() (entities.Statistics, error) {
	return t.store.GetStatistics()
}

// ResetAll removes every book. Cover files are left in place.
func (t *Tracker) ResetAll() error {
	if err := t.store.ResetAll(); err != nil {
		return err
	}
	log.Println("Tracker: all books removed")
	return nil
}

// Export writes a portable document to the export directory.
func (t *Tracker) Export(ctx context.Context) (exporters.ExportResult, error) {
	return t.exporter.Export(ctx)
}

// ExportDocument builds a portable document without writing it anywhere.
func (t *Tracker) ExportDocument(ctx context.Context) (exporters.ExportResult, error) {
	return t.exporter.BuildDocument(ctx)
}

// Import saves an audit copy of the document (best effort) and then replaces
// the collection with its contents.
func (t *Tracker) Import(ctx context.Context, data []byte) (importers.ImportResult, error) {
	if t.auditor != nil {
		if _, err := t.auditor.SaveDocument(data); err != nil {
			log.Printf("Tracker: failed to save audit copy of import: %v", err)
		}
	}
	return t.importer.Import(ctx, data)
}

// ImportFile reads a portable document from disk and imports it.
func (t *Tracker) ImportFile(ctx context.Context, path string) (importers.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return importers.ImportResult{}, fmt.Errorf("%w: read %s: %v", entities.ErrIO, path, err)
	}
	return t.Import(ctx, data)
}

// StoreCover brings a cover reference into the managed cover area: remote
// http(s) URLs are downloaded, local files are copied. References already
// inside the area are returned unchanged.
func (t *Tracker) StoreCover(ctx context.Context, ref string) (string, error) {
	if t.covers == nil {
		return "", fmt.Errorf("%w: no cover storage configured", entities.ErrIO)
	}
	if t.covers.Contains(ref) {
		return ref, nil
	}
	if isRemote(ref) {
		return t.covers.Fetch(ctx, ref)
	}
	return t.covers.CopyFrom(ref)
}

// FetchCover is StoreCover restricted to remote covers. Network callers use
// it so they cannot pull files from the server's own filesystem.
func (t *Tracker) FetchCover(ctx context.Context, ref string) (string, error) {
	if t.covers == nil {
		return "", fmt.Errorf("%w: no cover storage configured", entities.ErrIO)
	}
	if t.covers.Contains(ref) {
		return ref, nil
	}
	if !isRemote(ref) {
		return "", fmt.Errorf("%w: cover to store must be an http(s) URL", entities.ErrValidation)
	}
	return t.covers.Fetch(ctx, ref)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
