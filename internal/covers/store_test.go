package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotobi/internal/entities"
)

// A minimal PNG header is enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "covers"), time.Second)
	require.NoError(t, err)
	return store
}

func TestNewStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "covers")

	store, err := NewStore(dir, 0)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(store.Dir()))
}

func TestContains(t *testing.T) {
	store := newTestStore(t)
	inside := filepath.Join(store.Dir(), "cover_1.jpg")
	sibling := store.Dir() + "-other/cover.jpg"

	tests := []struct {
		name string
		ref  string
		want bool
	}{
		{"file inside", inside, true},
		{"file uri inside", "file://" + inside, true},
		{"directory itself", store.Dir(), false},
		{"escape via dot-dot", filepath.Join(store.Dir(), "..", "x.jpg"), false},
		{"sibling with shared prefix", sibling, false},
		{"remote url", "https://example.com/cover.jpg", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Contains(tt.ref))
		})
	}
}

func TestSaveAndRead(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(pngBytes, "../png")
	require.NoError(t, err)
	second, err := store.Save(pngBytes, "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.True(t, strings.HasSuffix(second, ".jpg"))
	assert.Equal(t, store.Dir(), filepath.Dir(first))

	data, err := store.Read(first)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	// No temp files are left behind.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRead_Errors(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read(filepath.Join(store.Dir(), "missing.jpg"))
	assert.ErrorIs(t, err, entities.ErrIO)

	outside := filepath.Join(t.TempDir(), "outside.jpg")
	require.NoError(t, os.WriteFile(outside, pngBytes, 0644))
	_, err = store.Read(outside)
	assert.ErrorIs(t, err, entities.ErrIO)
}

func TestCopyFrom(t *testing.T) {
	store := newTestStore(t)
	src := filepath.Join(t.TempDir(), "picked")
	require.NoError(t, os.WriteFile(src, pngBytes, 0644))

	copied, err := store.CopyFrom(src)
	require.NoError(t, err)
	assert.True(t, store.Contains(copied))
	assert.True(t, strings.HasSuffix(copied, ".png"))

	again, err := store.CopyFrom(copied)
	require.NoError(t, err)
	assert.Equal(t, copied, again)

	_, err = store.CopyFrom(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, entities.ErrIO)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	store := newTestStore(t)

	t.Run("downloads into the managed area", func(t *testing.T) {
		saved, err := store.Fetch(context.Background(), server.URL+"/covers/42")
		require.NoError(t, err)
		assert.True(t, store.Contains(saved))
		assert.True(t, strings.HasSuffix(saved, ".png"))
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		_, err := store.Fetch(context.Background(), server.URL+"/missing.jpg")
		assert.ErrorIs(t, err, entities.ErrIO)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Fetch(ctx, server.URL+"/covers/1")
		assert.ErrorIs(t, err, entities.ErrIO)
	})
}

func TestExtensionHint(t *testing.T) {
	assert.Equal(t, "jpeg", ExtensionHint("/a/b/cover.JPEG", nil))
	assert.Equal(t, "png", ExtensionHint("/a/b/cover", pngBytes))
	assert.Equal(t, "jpg", ExtensionHint("/a/b/cover", nil))
}
