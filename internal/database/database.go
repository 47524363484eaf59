package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kotobi/internal/entities"
)

// Database owns the sqlite connection and the durable schema. A Database is
// usable only after Initialize succeeded; until then Conn refuses access.
type Database struct {
	DB *gorm.DB

	mu          sync.RWMutex
	initialized bool
}

// Open connects to the sqlite file at dbPath without touching the schema.
func Open(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create database dir: %v", entities.ErrInitialization, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", entities.ErrInitialization, err)
	}

	return &Database{DB: db}, nil
}

// NewDatabase opens the database and makes sure the schema exists.
func NewDatabase(dbPath string) (*Database, error) {
	database, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := database.Initialize(); err != nil {
		database.Close()
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)
	return database, nil
}

// Initialize creates the books table if it does not exist. It is safe to
// call any number of times, across restarts too.
func (d *Database) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.DB.AutoMigrate(&entities.Book{}); err != nil {
		d.initialized = false
		return fmt.Errorf("%w: failed to migrate database: %v", entities.ErrInitialization, err)
	}
	d.initialized = true
	return nil
}

// Initialized reports whether the schema is in place.
func (d *Database) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Conn returns the gorm handle, or ErrInitialization if the schema was never
// set up successfully.
func (d *Database) Conn() (*gorm.DB, error) {
	if d == nil || d.DB == nil || !d.Initialized() {
		return nil, entities.ErrInitialization
	}
	return d.DB, nil
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
