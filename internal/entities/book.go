package entities

import (
	"time"
)

type Status string

const (
	StatusToRead    Status = "to-read"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// Statuses lists every accepted reading status.
var Statuses = []Status{StatusToRead, StatusReading, StatusCompleted}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusForProgress derives the status that matches a progress value:
// nothing read is to-read, everything read is completed, anything else is reading.
// The store never applies this on its own; callers use it to keep status and
// pagesRead consistent.
func StatusForProgress(pagesRead, totalPages int) Status {
	switch {
	case pagesRead <= 0:
		return StatusToRead
	case pagesRead >= totalPages:
		return StatusCompleted
	default:
		return StatusReading
	}
}

// Book is the single persisted entity: one reading-progress record.
type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:512;not null" json:"title"`
	Cover      string    `gorm:"size:2048;not null;default:''" json:"cover"`
	TotalPages int       `gorm:"not null" json:"totalPages"`
	PagesRead  int       `gorm:"not null;default:0" json:"pagesRead"`
	Status     Status    `gorm:"size:20;not null;default:'to-read';index" json:"status"`
	Rating     int       `gorm:"not null;default:0" json:"rating"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null;index" json:"updatedAt"`
}

func (Book) TableName() string {
	return "books"
}

// Draft is the caller-supplied part of a Book: everything except the id and
// the timestamps, which the store owns. Cover is required so that every
// stored book survives an export/import round trip.
type Draft struct {
	Title      string `json:"title" validate:"required"`
	Cover      string `json:"cover" validate:"required"`
	TotalPages int    `json:"totalPages" validate:"gt=0"`
	PagesRead  int    `json:"pagesRead" validate:"gte=0,ltefield=TotalPages"`
	Status     Status `json:"status" validate:"required,oneof=to-read reading completed"`
	Rating     int    `json:"rating" validate:"gte=0,lte=5"`
}

// Details holds the fields overwritten by a detail update.
type Details struct {
	Title      string `json:"title" validate:"required"`
	TotalPages int    `json:"totalPages" validate:"gt=0"`
	Status     Status `json:"status" validate:"required,oneof=to-read reading completed"`
	Cover      string `json:"cover" validate:"required"`
	Rating     int    `json:"rating" validate:"gte=0,lte=5"`
}

// Statistics aggregates counts and page sums across the whole collection.
// Every field is zero on an empty store.
type Statistics struct {
	TotalBooks       int `json:"totalBooks"`
	CompletedBooks   int `json:"completedBooks"`
	CurrentlyReading int `json:"currentlyReading"`
	TotalPagesRead   int `json:"totalPagesRead"`
	TotalPagesGoal   int `json:"totalPagesGoal"`
}
