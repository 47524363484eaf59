// Package database provides the data access layer for the reading tracker.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and idempotent schema initialization
//	└── books/           # Book CRUD, bulk replace and statistics
//
// The schema is a single books table managed by gorm AutoMigrate. Opening a
// database and initializing it are separate steps so that a failed
// initialization leaves a handle that refuses every operation:
//
//	db, err := database.NewDatabase("./reading-tracker.db") // Open + Initialize
//	if err != nil {
//		// errors.Is(err, entities.ErrInitialization)
//	}
//	repo := books.NewRepository(db)
//	id, err := repo.AddBook(entities.Draft{...})
package database
