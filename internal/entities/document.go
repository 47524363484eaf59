package entities

// FormatVersion is written into every portable document. Version 1.1 added
// embedded cover payloads.
const FormatVersion = "1.1"

// CoverData is a cover image embedded into a portable document.
type CoverData struct {
	Base64 string `json:"base64"`
	Ext    string `json:"ext"`
}

// ExportedBook is one book inside a portable document. Timestamps are
// RFC 3339 strings; the id is informational and ignored on import.
type ExportedBook struct {
	ID         uint       `json:"id,omitempty"`
	Title      string     `json:"title"`
	Cover      string     `json:"cover"`
	TotalPages int        `json:"totalPages"`
	PagesRead  int        `json:"pagesRead"`
	Status     Status     `json:"status"`
	Rating     int        `json:"rating"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
	CoverData  *CoverData `json:"coverData"`
}

// Document is the portable snapshot produced by export and consumed by import.
type Document struct {
	Version    string         `json:"version"`
	ExportedAt string         `json:"exportedAt"`
	Books      []ExportedBook `json:"books"`
	Statistics Statistics     `json:"statistics"`
}

// ValidatedBook is a book record from a portable document that passed the
// strict schema checks.
type ValidatedBook struct {
	Title      string
	Cover      string
	TotalPages int
	PagesRead  int
	Status     Status
	Rating     int
	CreatedAt  string
	UpdatedAt  string
}

// Draft converts the record into a store draft, dropping its timestamps.
func (b ValidatedBook) Draft() Draft {
	return Draft{
		Title:      b.Title,
		Cover:      b.Cover,
		TotalPages: b.TotalPages,
		PagesRead:  b.PagesRead,
		Status:     b.Status,
		Rating:     b.Rating,
	}
}

// RawImportRecord is a validated book together with the optional cover
// payload that travelled with it.
type RawImportRecord struct {
	Book      ValidatedBook
	CoverData *CoverData
}

// HasCoverPayload reports whether the record carries a non-empty embedded cover.
func (r RawImportRecord) HasCoverPayload() bool {
	return r.CoverData != nil && r.CoverData.Base64 != ""
}
