// Package covers manages the on-disk cover-storage area. Every file the
// application writes for a cover (restored from a portable document, copied
// from a picked image, or downloaded from a remote URL) lands here, and only
// covers that live here are embedded on export.
package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mrlokans/kotobi/internal/entities"
	"github.com/mrlokans/kotobi/internal/utils"
)

const fileScheme = "file://"

// maxCoverSize caps reads and downloads of a single cover image.
const maxCoverSize = 20 << 20

// Store handles the managed cover directory.
type Store struct {
	dir        string
	httpClient *http.Client
}

// NewStore creates the cover store at dir, creating the directory if needed.
func NewStore(dir string, fetchTimeout time.Duration) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve covers dir: %v", entities.ErrIO, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: create covers dir: %v", entities.ErrIO, err)
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}

	return &Store{
		dir: abs,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}, nil
}

// Dir returns the absolute path of the managed directory.
func (s *Store) Dir() string {
	return s.dir
}

// Contains reports whether a cover reference points at a file inside the
// managed directory. Plain paths and file:// URIs are both accepted.
func (s *Store) Contains(ref string) bool {
	local, ok := localPath(ref)
	if !ok {
		return false
	}
	abs, err := filepath.Abs(local)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Read returns the bytes of a managed cover.
func (s *Store) Read(ref string) ([]byte, error) {
	if !s.Contains(ref) {
		return nil, fmt.Errorf("%w: cover %q is outside the managed area", entities.ErrIO, ref)
	}
	local, _ := localPath(ref)

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("%w: open cover: %v", entities.ErrIO, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCoverSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read cover: %v", entities.ErrIO, err)
	}
	if len(data) > maxCoverSize {
		return nil, fmt.Errorf("%w: cover %q exceeds %d bytes", entities.ErrIO, ref, maxCoverSize)
	}
	return data, nil
}

// Save writes data under a fresh collision-resistant name using the given
// extension hint and returns the new path.
func (s *Store) Save(data []byte, ext string) (string, error) {
	name := fmt.Sprintf("cover_%s.%s", uuid.NewString(), utils.SanitizeExtension(ext))
	target := filepath.Join(s.dir, name)

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(s.dir, "cover_tmp_")
	if err != nil {
		return "", fmt.Errorf("%w: create temp cover: %v", entities.ErrIO, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("%w: write cover: %v", entities.ErrIO, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("%w: write cover: %v", entities.ErrIO, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("%w: store cover: %v", entities.ErrIO, err)
	}
	return target, nil
}

// CopyFrom copies an image from anywhere on disk into the managed area.
// A source that is already managed is returned unchanged.
func (s *Store) CopyFrom(src string) (string, error) {
	if s.Contains(src) {
		local, _ := localPath(src)
		return local, nil
	}
	local, ok := localPath(src)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a local file", entities.ErrIO, src)
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", entities.ErrIO, local, err)
	}
	return s.Save(data, ExtensionHint(local, data))
}

// Fetch downloads a remote cover into the managed area.
func (s *Store) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", entities.ErrIO, err)
	}
	req.Header.Set("User-Agent", "Kotobi/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch cover: %v", entities.ErrIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: failed to fetch cover: status %d", entities.ErrIO, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read cover body: %v", entities.ErrIO, err)
	}
	if len(data) > maxCoverSize {
		return "", fmt.Errorf("%w: remote cover exceeds %d bytes", entities.ErrIO, maxCoverSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: remote cover is empty", entities.ErrIO)
	}

	return s.Save(data, ExtensionHint(path.Base(req.URL.Path), data))
}

// ExtensionHint picks the extension to record for a cover: the reference's
// own suffix if it has one, otherwise the sniffed content type, otherwise jpg.
func ExtensionHint(ref string, data []byte) string {
	if ext := filepath.Ext(ref); len(ext) > 1 {
		return utils.SanitizeExtension(ext)
	}
	if len(data) > 0 {
		if ext := mimetype.Detect(data).Extension(); ext != "" {
			return utils.SanitizeExtension(ext)
		}
	}
	return utils.DefaultCoverExtension
}

func localPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if strings.HasPrefix(ref, fileScheme) {
		return strings.TrimPrefix(ref, fileScheme), true
	}
	if strings.Contains(ref, "://") {
		return "", false
	}
	return ref, true
}
