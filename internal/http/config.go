package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Tracker  Tracker
	Database StoreHealth

	// Background task queue; nil disables the async endpoints
	TaskQueue TaskQueue

	// Prefix for downloaded backup file names
	ExportPrefix string

	// Directory that POST /api/import/file may read from; empty disables it
	ImportDir string

	// Application info
	Version string
}
