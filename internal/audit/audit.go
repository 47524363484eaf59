// Package audit keeps a copy of every portable document that was submitted
// for import, so a bad restore can be traced back to its input.
package audit

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveDocument stores the document bytes exactly as received under a UUID4
// filename and returns that filename.
func (a *Auditor) SaveDocument(data []byte) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Audit: saved import document %s (%d bytes)", path, len(data))
	return filename, nil
}

// PruneResult reports what a Prune pass did.
type PruneResult struct {
	Removed    int
	Kept       int
	FreedBytes int64
}

// Prune removes saved documents last modified before cutoff. The keepLatest
// most recent documents survive whatever their age, so the input of the last
// restore stays available. Files other than *.json are never touched.
func (a *Auditor) Prune(ctx context.Context, cutoff time.Time, keepLatest int) (PruneResult, error) {
	var result PruneResult

	entries, err := os.ReadDir(a.AuditDir)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to list audit directory: %w", err)
	}

	docs := make([]fs.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if info, err := entry.Info(); err == nil {
			docs = append(docs, info)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ModTime().After(docs[j].ModTime())
	})

	for i, doc := range docs {
		if i < keepLatest || !doc.ModTime().Before(cutoff) {
			result.Kept++
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := os.Remove(filepath.Join(a.AuditDir, doc.Name())); err != nil && !os.IsNotExist(err) {
			return result, fmt.Errorf("failed to remove audit file %s: %w", doc.Name(), err)
		}
		result.Removed++
		result.FreedBytes += doc.Size()
	}
	return result, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
