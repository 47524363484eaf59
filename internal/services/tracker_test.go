package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotobi/internal/config"
	"github.com/mrlokans/kotobi/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()
	return &config.Config{
		Database: config.Database{Path: filepath.Join(tmp, "tracker.db")},
		Covers:   config.Covers{Dir: filepath.Join(tmp, "covers"), FetchTimeout: time.Second},
		Export:   config.Export{Dir: filepath.Join(tmp, "exports"), Prefix: "kotobi_backup"},
		Audit:    config.Audit{Dir: filepath.Join(tmp, "audit")},
	}
}

func openTracker(t *testing.T, cfg *config.Config) *Tracker {
	t.Helper()
	tracker, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { tracker.Close() })
	return tracker
}

func TestOpen_InitializationFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Database.Path = filepath.Join(blocker, "tracker.db")

	tracker, err := Open(cfg)
	assert.ErrorIs(t, err, entities.ErrInitialization)
	assert.Nil(t, tracker)
}

func TestTracker_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	tracker := openTracker(t, cfg)
	ctx := context.Background()

	id, err := tracker.AddBook(entities.Draft{Title: "A", Cover: "x", TotalPages: 100, Status: entities.StatusToRead})
	require.NoError(t, err)

	require.NoError(t, tracker.RecordProgress(id, 40))
	book, err := tracker.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReading, book.Status)

	require.NoError(t, tracker.RecordProgress(id, 100))
	book, _ = tracker.GetBook(id)
	assert.Equal(t, entities.StatusCompleted, book.Status)

	exported, err := tracker.Export(ctx)
	require.NoError(t, err)
	assert.FileExists(t, exported.Path)

	require.NoError(t, tracker.ResetAll())
	stats, err := tracker.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, entities.Statistics{}, stats)

	result, err := tracker.ImportFile(ctx, exported.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BooksImported)

	all, err := tracker.GetBooks()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 100, all[0].PagesRead)
	assert.Equal(t, entities.StatusCompleted, all[0].Status)

	// The import left an audit copy behind.
	entries, err := os.ReadDir(cfg.Audit.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTracker_RecordProgressUnknownBook(t *testing.T) {
	tracker := openTracker(t, testConfig(t))
	assert.ErrorIs(t, tracker.RecordProgress(99, 1), entities.ErrNotFound)
}

func TestTracker_ImportRejectedDocumentStillAudited(t *testing.T) {
	cfg := testConfig(t)
	tracker := openTracker(t, cfg)

	_, err := tracker.Import(context.Background(), []byte(`{"books":[]}`))
	assert.ErrorIs(t, err, entities.ErrValidation)

	entries, err := os.ReadDir(cfg.Audit.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTracker_StoreCover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nremote"))
	}))
	defer server.Close()

	tracker := openTracker(t, testConfig(t))
	ctx := context.Background()

	fetched, err := tracker.StoreCover(ctx, server.URL+"/cover.png")
	require.NoError(t, err)
	assert.FileExists(t, fetched)

	same, err := tracker.StoreCover(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, fetched, same)

	local := filepath.Join(t.TempDir(), "picked.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpeg"), 0644))
	copied, err := tracker.StoreCover(ctx, local)
	require.NoError(t, err)
	assert.NotEqual(t, local, copied)
	assert.Equal(t, ".jpg", filepath.Ext(copied))
}

func TestTracker_FetchCoverRefusesLocalFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nremote"))
	}))
	defer server.Close()

	tracker := openTracker(t, testConfig(t))
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(local, []byte("secret"), 0644))

	for _, ref := range []string{local, "file://" + local, "../" + filepath.Base(local)} {
		_, err := tracker.FetchCover(ctx, ref)
		assert.ErrorIs(t, err, entities.ErrValidation, ref)
	}

	fetched, err := tracker.FetchCover(ctx, server.URL+"/cover.png")
	require.NoError(t, err)
	assert.FileExists(t, fetched)

	same, err := tracker.FetchCover(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, fetched, same)
}

func TestTracker_EditBook(t *testing.T) {
	tracker := openTracker(t, testConfig(t))

	id, err := tracker.AddBook(entities.Draft{Title: "A", Cover: "x", TotalPages: 300, Status: entities.StatusToRead})
	require.NoError(t, err)
	require.NoError(t, tracker.RecordProgress(id, 250))

	require.NoError(t, tracker.EditBook(id, entities.Details{Title: "A", Cover: "x", TotalPages: 200, Status: entities.StatusReading}))

	book, err := tracker.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, 200, book.TotalPages)
	assert.Equal(t, 0, book.PagesRead)
	assert.Equal(t, entities.StatusToRead, book.Status)

	// The plain detail update keeps rejecting the same shrink.
	require.NoError(t, tracker.RecordProgress(id, 150))
	err = tracker.UpdateDetails(id, entities.Details{Title: "A", Cover: "x", TotalPages: 100, Status: entities.StatusReading})
	assert.ErrorIs(t, err, entities.ErrValidation)
}
