// Package interfaces documents the core abstractions used throughout the application.
//
// Every layer depends on small interfaces declared next to the code that uses
// them; this package holds the compile-time checks that tie them to their
// concrete implementations.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookReader, BookWriter, BookStore: book CRUD and statistics (internal/services/interfaces.go)
//   - BookSource: books and statistics for export (internal/exporters/generic.go)
//   - Replacer: atomic replacement of the collection (internal/importers/snapshot.go)
//   - StoreHealth: database liveness and schema state (internal/http/stores.go)
//
// ## Cover Storage Interfaces
//
//   - CoverStore: copy or download covers into the managed area (internal/services/interfaces.go)
//   - CoverSource: read stored covers for embedding (internal/exporters/generic.go)
//   - CoverSaver: write decoded covers on import (internal/importers/snapshot.go)
//
// ## Front End Interfaces
//
//   - Tracker: everything the HTTP layer needs (internal/http/stores.go)
//   - Exporter, FileImporter: work done by queued tasks (internal/tasks/)
//   - TaskQueue, TaskEnqueuer: enqueue tasks and read their status (internal/http/stores.go, internal/scheduler/backup.go)
//
// # Adding a New Front End
//
// Front ends never touch the database directly. Open a tracker and call it:
//
//	tracker, err := services.Open(config.NewConfig())
//	if err != nil {
//	    return err
//	}
//	defer tracker.Close()
//
//	id, err := tracker.AddBook(entities.Draft{Title: "Dune", Cover: "/covers/dune.jpg", TotalPages: 412, Status: entities.StatusToRead})
//
// # Adding a New Background Task
//
//  1. Define the task and its queue in internal/tasks/
//
//     type RebuildCoversTask struct{}
//
//     func (t RebuildCoversTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "rebuild_covers", MaxAttempts: 1}
//     }
//
//  2. Register the queue in entrypoint.go
//
//  3. Enqueue it through TaskQueue.Enqueue
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
