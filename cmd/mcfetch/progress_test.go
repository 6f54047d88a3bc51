package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/mcfetch/internal/engine"
	"github.com/NamanBalaji/mcfetch/internal/pool"
	"github.com/NamanBalaji/mcfetch/internal/repository"
	"github.com/NamanBalaji/mcfetch/internal/status"
	"github.com/NamanBalaji/mcfetch/internal/task"
)

type quickTask struct {
	task.Base
}

func (*quickTask) Kind() string { return "quick" }

func (*quickTask) Name() string { return "quick" }

func (*quickTask) Run(_ context.Context, env task.Env) error {
	env.Progress.SetTotal(4)
	env.Progress.Add(4)

	return nil
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[          ]", progressBar(0, 10))
	assert.Equal(t, "[=====     ]", progressBar(50, 10))
	assert.Equal(t, "[==========]", progressBar(100, 10))
	assert.Equal(t, "[==========]", progressBar(120, 10))
}

func TestWatchReturnsTerminalSnapshot(t *testing.T) {
	m := engine.NewManager(pool.New(1))
	id := m.AppendTask(&quickTask{})
	require.NoError(t, m.StartTask(id))

	snap := watch(m, id, time.Millisecond)
	assert.Equal(t, status.Completed, snap.Status)
	assert.Equal(t, uint64(4), snap.Progress.Completed)
}

func TestPrintHistory(t *testing.T) {
	repo, err := repository.NewBboltRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Save(&repository.TaskRecord{
		ID:         "a1",
		Name:       "Download 1.20.1 client",
		Status:     status.Failed,
		Error:      "retries exhausted",
		Completed:  5,
		Total:      9,
		CreatedAt:  time.Now(),
		FinishedAt: time.Now(),
	}))

	var buf bytes.Buffer
	require.NoError(t, printHistory(&buf, repo))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "Failed")
	assert.Contains(t, lines[1], "5/9")
	assert.Contains(t, lines[1], "retries exhausted")
}
