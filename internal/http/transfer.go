package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotobi/internal/tasks"
	"github.com/mrlokans/kotobi/internal/utils"
)

// maxDocumentSize caps uploaded portable documents; embedded covers make
// them far larger than the book data alone.
const maxDocumentSize = 256 << 20

// TransferController handles export, import and reset of the whole collection.
// Import and reset replace or remove every book, so both require an explicit
// confirm=true query parameter.
type TransferController struct {
	transfer     Transfer
	queue        TaskQueue
	exportPrefix string
	importDir    string
}

func NewTransferController(transfer Transfer, queue TaskQueue, exportPrefix, importDir string) *TransferController {
	return &TransferController{
		transfer:     transfer,
		queue:        queue,
		exportPrefix: exportPrefix,
		importDir:    importDir,
	}
}

// ImportFileRequest is the body of POST /api/import/file. Relative paths are
// resolved against the import directory; nothing outside it is accepted.
type ImportFileRequest struct {
	Path string `json:"path"`
}

// Export handles POST /api/export. With async=true the export is handed to
// the task queue and the task id is returned.
func (tc *TransferController) Export(c *gin.Context) {
	if c.Query("async") == "true" {
		if tc.queue == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
			return
		}
		taskID, err := tc.queue.Enqueue(tasks.ExportTask{Trigger: "api"})
		if err != nil {
			respondInternalError(c, err, "enqueue export")
			return
		}
		respondAccepted(c, "export enqueued", gin.H{"task_id": taskID})
		return
	}

	result, err := tc.transfer.Export(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "export")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Download handles GET /api/export/download and streams the document
// without writing it to the export directory.
func (tc *TransferController) Download(c *gin.Context) {
	result, err := tc.transfer.ExportDocument(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "export download")
		return
	}

	filename := utils.BackupFilename(tc.exportPrefix, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.IndentedJSON(http.StatusOK, result.Document)
}

// Import handles POST /api/import; the request body is the document.
func (tc *TransferController) Import(c *gin.Context) {
	if !confirmed(c) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentSize))
	if err != nil {
		respondBadRequest(c, "failed to read document: "+err.Error())
		return
	}
	if len(data) == 0 {
		respondBadRequest(c, "request body is empty")
		return
	}

	result, err := tc.transfer.Import(c.Request.Context(), data)
	if err != nil {
		respondStoreError(c, err, "import")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportFile handles POST /api/import/file by enqueueing an import of a
// document already on the server's disk.
func (tc *TransferController) ImportFile(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if tc.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}

	var req ImportFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		respondBadRequest(c, "path is required")
		return
	}
	path, err := resolveImportPath(tc.importDir, req.Path)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	taskID, err := tc.queue.Enqueue(tasks.ImportTask{Path: path})
	if err != nil {
		respondInternalError(c, err, "enqueue import")
		return
	}
	respondAccepted(c, "import enqueued", gin.H{"task_id": taskID})
}

// resolveImportPath returns the absolute, symlink-free form of path and fails
// unless it lies inside dir.
func resolveImportPath(dir, path string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("importing server files is disabled")
	}
	root, err := canonicalPath(dir)
	if err != nil {
		return "", fmt.Errorf("import directory unavailable: %v", err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	resolved, err := canonicalPath(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %v", err)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path must be a file inside %s", dir)
	}
	return resolved, nil
}

// canonicalPath makes path absolute and resolves symlinks when it exists.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// Reset handles POST /api/reset.
func (tc *TransferController) Reset(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := tc.transfer.ResetAll(); err != nil {
		respondStoreError(c, err, "reset")
		return
	}
	respondSuccess(c, "all books removed")
}

// TaskStatus handles GET /api/tasks/:id
func (tc *TransferController) TaskStatus(c *gin.Context) {
	if tc.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID := c.Param("id")
	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func confirmed(c *gin.Context) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	c.JSON(http.StatusPreconditionRequired, ErrorResponse{
		Error: "this operation replaces all books; repeat with confirm=true",
		Code:  "confirmation_required",
	})
	return false
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
