package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotobi/internal/entities"
)

// testEnv points every command at a fresh temporary database and directories.
func testEnv(t *testing.T) (dbPath, exportDir string) {
	t.Helper()
	tmp := t.TempDir()
	exportDir = filepath.Join(tmp, "exports")
	t.Setenv("DATABASE_PATH", filepath.Join(tmp, "books.db"))
	t.Setenv("COVERS_DIR", filepath.Join(tmp, "covers"))
	t.Setenv("EXPORT_DIR", exportDir)
	t.Setenv("AUDIT_DIR", filepath.Join(tmp, "audit"))
	return filepath.Join(tmp, "books.db"), exportDir
}

func run(t *testing.T, cmd Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, cmd.ParseFlags(args))
	setOutput(cmd, &out)
	require.NoError(t, cmd.Run())
	return out.String()
}

func setOutput(cmd Command, out *bytes.Buffer) {
	switch c := cmd.(type) {
	case *AddCommand:
		c.out = out
	case *ListCommand:
		c.out = out
	case *ProgressCommand:
		c.out = out
	case *EditCommand:
		c.out = out
	case *DeleteCommand:
		c.out = out
	case *StatsCommand:
		c.out = out
	case *ExportCommand:
		c.out = out
	case *ImportCommand:
		c.out = out
	case *ResetCommand:
		c.out = out
	}
}

func listBooks(t *testing.T) []entities.Book {
	t.Helper()
	var books []entities.Book
	require.NoError(t, json.Unmarshal([]byte(run(t, NewListCommand(), "-json")), &books))
	return books
}

func TestAddAndList(t *testing.T) {
	testEnv(t)

	out := run(t, NewAddCommand(), "-title", "Dune", "-cover", "/covers/dune.jpg", "-pages", "412", "-read", "40")
	assert.Contains(t, out, `Added book #1 "Dune" (reading)`)

	books := listBooks(t)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, entities.StatusReading, books[0].Status)

	out = run(t, NewListCommand())
	assert.Contains(t, out, `"Dune"`)
	assert.Contains(t, out, "40/412")
}

func TestAddCommand_ParseFlags(t *testing.T) {
	assert.Error(t, NewAddCommand().ParseFlags([]string{"-cover", "x", "-pages", "1"}))
	assert.Error(t, NewAddCommand().ParseFlags([]string{"-title", "x", "-pages", "1"}))
}

func TestAddCommand_InvalidDraft(t *testing.T) {
	testEnv(t)

	cmd := NewAddCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-title", "A", "-cover", "x", "-pages", "10", "-read", "11"}))
	err := cmd.Run()
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestProgressCommand(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100")

	out := run(t, NewProgressCommand(), "-id", "1", "-read", "100")
	assert.Contains(t, out, "100/100 pages (completed)")

	out = run(t, NewProgressCommand(), "-id", "1", "-read", "0", "-status", "reading")
	assert.Contains(t, out, "0/100 pages (reading)")

	assert.Error(t, NewProgressCommand().ParseFlags([]string{"-id", "1"}))

	cmd := NewProgressCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-id", "9", "-read", "1"}))
	assert.ErrorIs(t, cmd.Run(), entities.ErrNotFound)
}

func TestEditCommand_KeepsUnsetFields(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100", "-rating", "2")

	run(t, NewEditCommand(), "-id", "1", "-title", "B", "-rating", "5")

	books := listBooks(t)
	require.Len(t, books, 1)
	assert.Equal(t, "B", books[0].Title)
	assert.Equal(t, 5, books[0].Rating)
	assert.Equal(t, 100, books[0].TotalPages)
	assert.Equal(t, "x", books[0].Cover)
	assert.Equal(t, entities.StatusToRead, books[0].Status)
}

func TestEditCommand_ShrinkingPagesRestartsProgress(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "300", "-read", "250")

	run(t, NewEditCommand(), "-id", "1", "-pages", "200")

	books := listBooks(t)
	require.Len(t, books, 1)
	assert.Equal(t, 200, books[0].TotalPages)
	assert.Equal(t, 0, books[0].PagesRead)
	assert.Equal(t, entities.StatusToRead, books[0].Status)

	run(t, NewProgressCommand(), "-id", "1", "-read", "150")
	cmd := NewEditCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-id", "1", "-pages", "100", "-status", "reading"}))
	assert.ErrorIs(t, cmd.Run(), entities.ErrValidation)
}

func TestDeleteCommand(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100")

	assert.Contains(t, run(t, NewDeleteCommand(), "-id", "1"), "Deleted book #1")
	assert.Empty(t, listBooks(t))

	cmd := NewDeleteCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-id", "1"}))
	assert.ErrorIs(t, cmd.Run(), entities.ErrNotFound)
}

func TestStatsCommand(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100", "-read", "100")
	run(t, NewAddCommand(), "-title", "B", "-cover", "x", "-pages", "50", "-read", "10")

	out := run(t, NewStatsCommand())
	assert.Contains(t, out, "Books:             2")
	assert.Contains(t, out, "Completed:         1")
	assert.Contains(t, out, "Currently reading: 1")
	assert.Contains(t, out, "Pages read:        110/150")
}

func TestExportImportRoundTrip(t *testing.T) {
	_, exportDir := testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100", "-read", "30")
	run(t, NewAddCommand(), "-title", "B", "-cover", "y", "-pages", "50")

	out := run(t, NewExportCommand())
	assert.Contains(t, out, "Exported 2 books")

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	backup := filepath.Join(exportDir, entries[0].Name())

	run(t, NewResetCommand(), "-yes")
	assert.Empty(t, listBooks(t))

	out = run(t, NewImportCommand(), "-file", backup, "-yes")
	assert.Contains(t, out, "Imported 2 books")

	books := listBooks(t)
	require.Len(t, books, 2)
	assert.Equal(t, "B", books[0].Title)
	assert.Equal(t, "A", books[1].Title)
	assert.Equal(t, 30, books[1].PagesRead)
}

func TestExportCommand_Stdout(t *testing.T) {
	_, exportDir := testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100")

	var doc entities.Document
	require.NoError(t, json.Unmarshal([]byte(run(t, NewExportCommand(), "-stdout")), &doc))
	assert.Equal(t, entities.FormatVersion, doc.Version)
	assert.Len(t, doc.Books, 1)

	_, err := os.Stat(exportDir)
	assert.True(t, os.IsNotExist(err))
}

func TestDestructiveCommandsRequireConfirmation(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100")

	reset := NewResetCommand()
	require.NoError(t, reset.ParseFlags(nil))
	assert.ErrorIs(t, reset.Run(), errNotConfirmed)

	imp := NewImportCommand()
	require.NoError(t, imp.ParseFlags([]string{"-file", "backup.json"}))
	assert.ErrorIs(t, imp.Run(), errNotConfirmed)

	assert.Len(t, listBooks(t), 1)
}

func TestImportCommand_InvalidDocumentKeepsBooks(t *testing.T) {
	testEnv(t)
	run(t, NewAddCommand(), "-title", "A", "-cover", "x", "-pages", "100")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2.0","books":[]}`), 0644))

	cmd := NewImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", path, "-yes"}))
	assert.ErrorIs(t, cmd.Run(), entities.ErrValidation)

	assert.Len(t, listBooks(t), 1)
}

func TestDatabaseFlag(t *testing.T) {
	testEnv(t)
	other := filepath.Join(t.TempDir(), "other.db")

	run(t, NewAddCommand(), "-db", other, "-title", "A", "-cover", "x", "-pages", "10")

	assert.Empty(t, listBooks(t))
	var books []entities.Book
	require.NoError(t, json.Unmarshal([]byte(run(t, NewListCommand(), "-db", other, "-json")), &books))
	assert.Len(t, books, 1)
}
