// Package task defines the units of work a Manager runs and the
// client-download task built on the chunked downloader.
package task

import (
	"context"

	"github.com/NamanBalaji/mcfetch/internal/pool"
	"github.com/NamanBalaji/mcfetch/internal/progress"
	"github.com/NamanBalaji/mcfetch/internal/status"
)

// Env is what a running task receives from its manager.
type Env struct {
	// Pool is shared by every task of the manager.
	Pool *pool.Pool
	// Progress belongs to this task alone. Set its total once before any
	// bytes are added.
	Progress *progress.Tracker
}

// Task is a unit of work tracked by a manager. Run blocks until the work is
// done, fails, or ctx is cancelled. The manager binds a State to the task when
// it is appended and moves its status from Run's result; Status and Progress
// report that state. Embedding Base provides Bind, Status and Progress.
type Task interface {
	Kind() string
	Name() string
	Run(ctx context.Context, env Env) error
	Status() status.Status
	Progress() progress.Progress
	Bind(state *State)
}
