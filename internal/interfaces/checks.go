package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/kotobi/internal/audit"
	"github.com/mrlokans/kotobi/internal/covers"
	"github.com/mrlokans/kotobi/internal/database"
	"github.com/mrlokans/kotobi/internal/database/books"
	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/http"
	"github.com/mrlokans/kotobi/internal/importers"
	"github.com/mrlokans/kotobi/internal/scheduler"
	"github.com/mrlokans/kotobi/internal/services"
	"github.com/mrlokans/kotobi/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.BookStore = (*books.Repository)(nil)
var _ exporters.BookSource = (*books.Repository)(nil)
var _ importers.Replacer = (*books.Repository)(nil)
var _ http.StoreHealth = (*database.Database)(nil)

// =============================================================================
// Cover Storage
// =============================================================================

var _ services.CoverStore = (*covers.Store)(nil)
var _ exporters.CoverSource = (*covers.Store)(nil)
var _ importers.CoverSaver = (*covers.Store)(nil)

// =============================================================================
// Snapshot Transfer
// =============================================================================

var _ services.SnapshotExporter = (*exporters.SnapshotExporter)(nil)
var _ services.SnapshotImporter = (*importers.SnapshotImporter)(nil)
var _ services.DocumentAuditor = (*audit.Auditor)(nil)

// =============================================================================
// Front Ends
// =============================================================================

var _ http.Tracker = (*services.Tracker)(nil)
var _ scheduler.Exporter = (*services.Tracker)(nil)
var _ tasks.Exporter = (*services.Tracker)(nil)
var _ tasks.FileImporter = (*services.Tracker)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ tasks.ImportDocumentPruner = (*audit.Auditor)(nil)
