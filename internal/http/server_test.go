package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotobi/internal/config"
	"github.com/mrlokans/kotobi/internal/services"
)

type fakeQueue struct {
	tasks  []backlite.Task
	status backlite.TaskStatus
	err    error
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-42", nil
}

func (f *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return f.status, f.err
}

type testServer struct {
	tracker *services.Tracker
	router  *gin.Engine
	queue   *fakeQueue
	cfg     *config.Config
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmp := t.TempDir()
	cfg := &config.Config{
		Database: config.Database{Path: filepath.Join(tmp, "test.db")},
		Covers:   config.Covers{Dir: filepath.Join(tmp, "covers"), FetchTimeout: time.Second},
		Export:   config.Export{Dir: filepath.Join(tmp, "exports"), Prefix: "kotobi_backup"},
		Audit:    config.Audit{Dir: filepath.Join(tmp, "audit")},
	}
	tracker, err := services.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { tracker.Close() })

	queue := &fakeQueue{status: backlite.TaskStatusPending}
	router := NewRouter(RouterConfig{
		Tracker:      tracker,
		Database:     tracker.Database(),
		TaskQueue:    queue,
		ExportPrefix: cfg.Export.Prefix,
		ImportDir:    cfg.Export.Dir,
		Version:      "test",
	})

	return &testServer{tracker: tracker, router: router, queue: queue, cfg: cfg}
}

func (s *testServer) do(method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, path, nil)
}
