package exporters

import "github.com/mrlokans/kotobi/internal/entities"

// BookSource is the read side of the book store needed to build a snapshot.
type BookSource interface {
	GetBooks() ([]entities.Book, error)
	GetStatistics() (entities.Statistics, error)
}

// CoverSource gives access to covers in the managed storage area.
type CoverSource interface {
	Contains(ref string) bool
	Read(ref string) ([]byte, error)
}

type ExportResult struct {
	Path           string            `json:"path"`
	BooksExported  int               `json:"books_exported"`
	CoversEmbedded int               `json:"covers_embedded"`
	Warnings       []string          `json:"warnings"`
	Document       entities.Document `json:"-"`
}
