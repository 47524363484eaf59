// Package importers restores a portable snapshot document into the store.
//
// # Flow
//
//	JSON bytes → ParseDocument → validation.Validate → restore covers → Replacer.ReplaceAll
//
// Parsing and validation never touch the store: a document that is not
// well-formed, carries an unsupported version, or contains a single invalid
// book is rejected with entities.ErrValidation before anything is written.
//
// # Covers
//
// Books that travelled with an embedded coverData payload get that payload
// written into the managed cover area under a fresh name, and the new path
// replaces the cover string from the document. A payload that cannot be
// decoded or written does not fail the import: the book keeps the cover
// string it was exported with and the problem is listed in
// ImportResult.Warnings.
//
// Restored cover files are written before the store swap. If the swap fails
// or the context is cancelled, they remain on disk as unreferenced files.
//
// # Example Usage
//
//	importer := importers.NewSnapshotImporter(repo, coverStore)
//	result, err := importer.ImportFile(ctx, "kotobi_backup_07-03-2024_09-05-03.json")
package importers
