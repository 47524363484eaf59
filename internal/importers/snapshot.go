package importers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/validation"
)

// Replacer swaps the whole book collection atomically.
type Replacer interface {
	ReplaceAll(ctx context.Context, drafts []entities.Draft) ([]uint, error)
}

// CoverSaver writes restored cover payloads into the managed cover area.
type CoverSaver interface {
	Save(data []byte, ext string) (string, error)
}

type ImportResult struct {
	Version        string   `json:"version"`
	BooksImported  int      `json:"books_imported"`
	CoversRestored int      `json:"covers_restored"`
	Warnings       []string `json:"warnings"`
}

// ParsedDocument is a portable document whose envelope was accepted and whose
// books passed validation.
type ParsedDocument struct {
	Version    string
	ExportedAt string
	Records    []entities.RawImportRecord
}

type rawDocument struct {
	Version    json.RawMessage `json:"version"`
	ExportedAt string          `json:"exportedAt"`
	Books      json.RawMessage `json:"books"`
}

// ParseDocument decodes and validates a portable document without side
// effects. Every failure wraps entities.ErrValidation.
func ParseDocument(data []byte) (*ParsedDocument, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: document is not valid JSON: %v", entities.ErrValidation, err)
	}
	version, err := documentVersion(raw.Version)
	if err != nil {
		return nil, err
	}
	if !supportedVersion(version) {
		return nil, fmt.Errorf("%w: unsupported document version %q", entities.ErrValidation, version)
	}

	books := bytes.TrimSpace(raw.Books)
	if len(books) == 0 || books[0] != '[' {
		return nil, fmt.Errorf("%w: document has no books array", entities.ErrValidation)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(books, &records); err != nil {
		return nil, fmt.Errorf("%w: books is not an array: %v", entities.ErrValidation, err)
	}

	result := validation.Validate(records)
	if !result.Valid {
		return nil, result.Error
	}

	return &ParsedDocument{
		Version:    version,
		ExportedAt: raw.ExportedAt,
		Records:    result.Records,
	}, nil
}

func documentVersion(field json.RawMessage) (string, error) {
	field = bytes.TrimSpace(field)
	if len(field) == 0 || bytes.Equal(field, []byte("null")) {
		return "", fmt.Errorf("%w: document has no version", entities.ErrValidation)
	}
	var version string
	if field[0] != '"' || json.Unmarshal(field, &version) != nil {
		return "", fmt.Errorf("%w: version must be a string", entities.ErrValidation)
	}
	if strings.TrimSpace(version) == "" {
		return "", fmt.Errorf("%w: document has no version", entities.ErrValidation)
	}
	return version, nil
}

// supportedVersion accepts any 1.x document; 1.0 documents simply carry no
// cover payloads.
func supportedVersion(version string) bool {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	return major == "1"
}

// SnapshotImporter replaces the store's contents with a portable document.
type SnapshotImporter struct {
	store  Replacer
	covers CoverSaver
}

func NewSnapshotImporter(store Replacer, coverSaver CoverSaver) *SnapshotImporter {
	return &SnapshotImporter{
		store:  store,
		covers: coverSaver,
	}
}

// Import parses, validates and applies a document. Ids and timestamps from
// the document are discarded; every book is stored as if newly added, in
// document order.
func (i *SnapshotImporter) Import(ctx context.Context, data []byte) (ImportResult, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return ImportResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Version: doc.Version, Warnings: []string{}}
	drafts := make([]entities.Draft, 0, len(doc.Records))
	for idx, record := range doc.Records {
		draft := record.Book.Draft()
		if record.HasCoverPayload() {
			restored, err := i.restoreCover(record.CoverData)
			if err != nil {
				warning := fmt.Sprintf("book %d (%q): cover not restored, keeping %q: %v", idx+1, draft.Title, draft.Cover, err)
				log.Printf("Import: %s", warning)
				result.Warnings = append(result.Warnings, warning)
			} else {
				draft.Cover = restored
				result.CoversRestored++
			}
		}
		drafts = append(drafts, draft)
	}

	ids, err := i.store.ReplaceAll(ctx, drafts)
	if err != nil {
		return ImportResult{}, err
	}

	result.BooksImported = len(ids)
	log.Printf("Import: replaced collection with %d books (%d covers restored, %d warnings)",
		result.BooksImported, result.CoversRestored, len(result.Warnings))
	return result, nil
}

// ImportFile reads a document from disk and imports it.
func (i *SnapshotImporter) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: read %s: %v", entities.ErrIO, path, err)
	}
	return i.Import(ctx, data)
}

func (i *SnapshotImporter) restoreCover(payload *entities.CoverData) (string, error) {
	if i.covers == nil {
		return "", fmt.Errorf("no cover storage configured")
	}
	data, err := base64.StdEncoding.DecodeString(payload.Base64)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	return i.covers.Save(data, payload.Ext)
}
