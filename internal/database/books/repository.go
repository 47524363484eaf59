// Package books implements the book store: CRUD over the books table, the
// transactional bulk replace used by import, and the statistics aggregate.
//
// All mutating operations are serialized by a single-writer mutex because
// sqlite offers no ordering between concurrent callers.
//
// # Status consistency
//
// AddBook, UpdateProgress and UpdateDetails trust the status passed by the
// caller. RecordProgress and EditBook derive it from pagesRead under the
// write lock (entities.StatusForProgress).
package books

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/kotobi/internal/database"
	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/validation"
)

// Repository handles all book database operations.
type Repository struct {
	db  *database.Database
	mu  sync.Mutex
	now func() time.Time
}

// NewRepository creates a new books repository over an initialized database.
func NewRepository(db *database.Database) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AddBook validates the draft and persists it as a new book. Both timestamps
// are set to the same instant. Returns the assigned id.
func (r *Repository) AddBook(draft entities.Draft) (uint, error) {
	if err := validation.Struct(draft); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return 0, err
	}

	book := newBook(draft, r.now())
	if err := conn.Create(&book).Error; err != nil {
		return 0, fmt.Errorf("failed to add book %q: %w", draft.Title, err)
	}
	return book.ID, nil
}

// GetBooks returns every book, most recently touched first. Books with equal
// updatedAt are ordered by id descending.
func (r *Repository) GetBooks() ([]entities.Book, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}

	books := []entities.Book{}
	err = conn.Order("updated_at DESC").Order("id DESC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetBook retrieves a single book by id.
func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}
	return findBook(conn, id)
}

// UpdateProgress sets pagesRead and refreshes updatedAt. An empty status
// leaves the stored status untouched, in which case the caller owns keeping
// it consistent with the new progress.
func (r *Repository) UpdateProgress(id uint, pagesRead int, status entities.Status) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", entities.ErrValidation, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	book, err := findBook(conn, id)
	if err != nil {
		return err
	}
	if pagesRead < 0 || pagesRead > book.TotalPages {
		return fmt.Errorf("%w: pagesRead must be between 0 and %d", entities.ErrValidation, book.TotalPages)
	}

	updates := map[string]any{
		"pages_read": pagesRead,
		"updated_at": r.now(),
	}
	if status != "" {
		updates["status"] = status
	}
	if err := conn.Model(book).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update progress of book %d: %w", id, err)
	}
	return nil
}

// UpdateDetails overwrites title, totalPages, status, cover and rating and
// refreshes updatedAt. The new totalPages may not drop below the pages
// already read.
func (r *Repository) UpdateDetails(id uint, details entities.Details) error {
	if err := validation.Struct(details); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	book, err := findBook(conn, id)
	if err != nil {
		return err
	}
	if details.TotalPages < book.PagesRead {
		return fmt.Errorf("%w: totalPages must be at least pagesRead (%d)", entities.ErrValidation, book.PagesRead)
	}

	if err := conn.Model(book).Updates(detailsUpdates(details, r.now())).Error; err != nil {
		return fmt.Errorf("failed to update book %d: %w", id, err)
	}
	return nil
}

// EditBook applies an edit the way the edit form does: when the new
// totalPages falls below the pages already read, progress restarts at 0.
// The given status is ignored; the stored one always matches the resulting
// progress.
func (r *Repository) EditBook(id uint, details entities.Details) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	book, err := findBook(conn, id)
	if err != nil {
		return err
	}

	pagesRead := book.PagesRead
	if details.TotalPages < pagesRead {
		pagesRead = 0
	}
	details.Status = entities.StatusForProgress(pagesRead, details.TotalPages)
	if err := validation.Struct(details); err != nil {
		return err
	}

	updates := detailsUpdates(details, r.now())
	updates["pages_read"] = pagesRead
	if err := conn.Model(book).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to edit book %d: %w", id, err)
	}
	return nil
}

// RecordProgress sets pagesRead together with the status derived from it.
// The derivation uses the totalPages read under the write lock.
func (r *Repository) RecordProgress(id uint, pagesRead int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	book, err := findBook(conn, id)
	if err != nil {
		return err
	}
	if pagesRead < 0 || pagesRead > book.TotalPages {
		return fmt.Errorf("%w: pagesRead must be between 0 and %d", entities.ErrValidation, book.TotalPages)
	}

	updates := map[string]any{
		"pages_read": pagesRead,
		"status":     entities.StatusForProgress(pagesRead, book.TotalPages),
		"updated_at": r.now(),
	}
	if err := conn.Model(book).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record progress of book %d: %w", id, err)
	}
	return nil
}

func detailsUpdates(details entities.Details, now time.Time) map[string]any {
	return map[string]any{
		"title":       details.Title,
		"total_pages": details.TotalPages,
		"status":      details.Status,
		"cover":       details.Cover,
		"rating":      details.Rating,
		"updated_at":  now,
	}
}

// DeleteBook permanently removes a book. Unknown ids report ErrNotFound.
func (r *Repository) DeleteBook(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	result := conn.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, entities.ErrNotFound)
	}
	return nil
}

// ResetAll removes every book. Calling it on an empty store is a no-op.
func (r *Repository) ResetAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	if err := deleteAll(conn); err != nil {
		return fmt.Errorf("failed to reset books: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole collection for the given drafts inside one
// transaction. Drafts are given in display order (most recent first); they
// all share one timestamp and are inserted last-to-first so the id
// tie-break of GetBooks reproduces that order. Any validation error, insert
// error or context cancellation rolls the transaction back and leaves the
// previous collection untouched. Returns the new ids in draft order.
func (r *Repository) ReplaceAll(ctx context.Context, drafts []entities.Draft) ([]uint, error) {
	for i, draft := range drafts {
		if err := validation.Struct(draft); err != nil {
			return nil, fmt.Errorf("book %d: %w", i+1, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(drafts))
	now := r.now()
	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx); err != nil {
			return fmt.Errorf("clear books: %w", err)
		}
		for i := len(drafts) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return err
			}
			book := newBook(drafts[i], now)
			if err := tx.Create(&book).Error; err != nil {
				return fmt.Errorf("insert book %q: %w", drafts[i].Title, err)
			}
			ids[i] = book.ID
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace books: %w", err)
	}
	return ids, nil
}

func newBook(draft entities.Draft, now time.Time) entities.Book {
	return entities.Book{
		Title:      draft.Title,
		Cover:      draft.Cover,
		TotalPages: draft.TotalPages,
		PagesRead:  draft.PagesRead,
		Status:     draft.Status,
		Rating:     draft.Rating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func findBook(conn *gorm.DB, id uint) (*entities.Book, error) {
	var book entities.Book
	err := conn.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("book %d: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %d: %w", id, err)
	}
	return &book, nil
}

func deleteAll(conn *gorm.DB) error {
	return conn.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Book{}).Error
}
