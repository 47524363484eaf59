package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotobi/internal/exporters"
	"github.com/mrlokans/kotobi/internal/tasks"
)

type fakeExporter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeExporter) Export(ctx context.Context) (exporters.ExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return exporters.ExportResult{}, f.err
	}
	return exporters.ExportResult{Path: "/backups/kotobi_backup.json", BooksExported: 3}, nil
}

type fakeQueue struct {
	tasks []backlite.Task
	err   error
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 0 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("0 0 0 * * *"))
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	next, err := NextRun("0 0 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), next)

	_, err = NextRun("bogus", from)
	assert.Error(t, err)
}

func TestDescribeSchedule(t *testing.T) {
	assert.Equal(t, "Daily at midnight", DescribeSchedule("0 0 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", DescribeSchedule("5 4 * * *"))
}

func TestBackupScheduler_StartStop(t *testing.T) {
	s := NewBackupScheduler(&fakeExporter{}, nil, "0 0 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.GetNextRunTime())
	assert.True(t, s.GetNextRunTime().After(time.Now()))

	// Second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())

	// Stopping twice is safe
	s.Stop()
}

func TestBackupScheduler_StopsWithContext(t *testing.T) {
	s := NewBackupScheduler(&fakeExporter{}, nil, "0 0 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler(&fakeExporter{}, nil, "every day")
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_RunNow(t *testing.T) {
	t.Run("exports inline without a queue", func(t *testing.T) {
		exporter := &fakeExporter{}
		s := NewBackupScheduler(exporter, nil, "0 0 * * *")

		status := s.RunNow(context.Background())
		assert.False(t, status.Failed)
		assert.Equal(t, "/backups/kotobi_backup.json", status.Path)
		assert.Equal(t, 1, exporter.calls)
		require.NotNil(t, s.LastRun())
		assert.Equal(t, status.Path, s.LastRun().Path)
	})

	t.Run("records export failures", func(t *testing.T) {
		s := NewBackupScheduler(&fakeExporter{err: errors.New("disk full")}, nil, "0 0 * * *")
		status := s.RunNow(context.Background())
		assert.True(t, status.Failed)
		assert.Contains(t, status.Message, "disk full")
	})

	t.Run("enqueues when a queue is configured", func(t *testing.T) {
		exporter := &fakeExporter{}
		queue := &fakeQueue{}
		s := NewBackupScheduler(exporter, queue, "0 0 * * *")

		status := s.RunNow(context.Background())
		assert.False(t, status.Failed)
		assert.Equal(t, "task-1", status.TaskID)
		require.Len(t, queue.tasks, 1)
		assert.Equal(t, tasks.ExportTask{Trigger: "schedule"}, queue.tasks[0])
		assert.Equal(t, 0, exporter.calls)
	})

	t.Run("no last run before the first backup", func(t *testing.T) {
		s := NewBackupScheduler(nil, nil, "0 0 * * *")
		assert.Nil(t, s.LastRun())
		assert.True(t, s.RunNow(context.Background()).Failed)
	})
}
