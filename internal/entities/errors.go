package entities

import "errors"

// Error taxonomy shared by the store, the validator and the snapshot
// exporter/importer. Concrete failures wrap one of these, so callers
// classify them with errors.Is.
var (
	// ErrInitialization is returned when the durable structure could not be
	// created, and by every store operation on a database that is not initialized.
	ErrInitialization = errors.New("store not initialized")

	// ErrValidation is returned for malformed input on create, update or import.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation references a nonexistent book.
	ErrNotFound = errors.New("book not found")

	// ErrIO is returned when reading or writing snapshot files fails.
	ErrIO = errors.New("i/o failure")
)
