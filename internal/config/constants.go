package config

const (
	// DefaultDatabasePath is the default path for the book database
	DefaultDatabasePath = "./reading-tracker.db"

	// DefaultExportPrefix starts every backup file name
	DefaultExportPrefix = "kotobi_backup"

	// coversSubdir is where covers live when COVERS_DIR is not set
	coversSubdir = "covers"
)
