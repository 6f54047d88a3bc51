// Package engine holds the task registry. Tasks are appended as Pending,
// started explicitly and observed by polling GetTaskInfo.
package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/logger"
	"github.com/NamanBalaji/mcfetch/internal/metrics"
	"github.com/NamanBalaji/mcfetch/internal/pool"
	"github.com/NamanBalaji/mcfetch/internal/repository"
	"github.com/NamanBalaji/mcfetch/internal/status"
	"github.com/NamanBalaji/mcfetch/internal/task"
)

// ErrManagerClosed is returned by StartTask after Shutdown.
var ErrManagerClosed = errors.New("manager is shut down")

type entry struct {
	mu sync.Mutex

	id    string
	task  task.Task
	state *task.State

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	cancel          context.CancelFunc
	cancelRequested bool
	done            chan struct{}
}

// snapshot must be called with e.mu held.
func (e *entry) snapshot() Snapshot {
	return Snapshot{
		ID:         e.id,
		Name:       e.task.Name(),
		Kind:       e.task.Kind(),
		Status:     e.task.Status(),
		Error:      e.state.Reason(),
		Progress:   e.task.Progress(),
		CreatedAt:  e.createdAt,
		StartedAt:  e.startedAt,
		FinishedAt: e.finishedAt,
	}
}

// transition must be called with e.mu held.
func (e *entry) transition(to status.Status, reason string) error {
	if err := e.state.Transition(to, reason); err != nil {
		return fmt.Errorf("task %s: %w", e.id, err)
	}

	if to.IsTerminal() {
		e.finishedAt = time.Now()
	}

	return nil
}

// Manager is a concurrency-safe task registry. Every task it starts shares
// the same worker pool.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*entry
	order []string

	pool       *pool.Pool
	repository repository.Repository

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	closed bool
}

// NewManager creates a Manager that runs tasks over p.
func NewManager(p *pool.Pool, opts ...Option) *Manager {
	ctx, cancelFunc := context.WithCancel(context.Background())

	m := &Manager{
		tasks:      make(map[string]*entry),
		pool:       p,
		ctx:        ctx,
		cancelFunc: cancelFunc,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// runTask runs a function in a goroutine tracked by the WaitGroup
func (m *Manager) runTask(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tasks[id]
	if !ok {
		return nil, errors.NewTaskError(errors.ErrTaskNotFound, id)
	}

	return e, nil
}

// AppendTask registers t as Pending and returns its id. Nothing runs until
// StartTask.
func (m *Manager) AppendTask(t task.Task) string {
	e := &entry{
		id:        uuid.NewString(),
		task:      t,
		state:     task.NewState(),
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
	t.Bind(e.state)

	m.mu.Lock()
	m.tasks[e.id] = e
	m.order = append(m.order, e.id)
	m.mu.Unlock()

	logger.Debugf("Appended task %s (%s)", e.id, t.Name())

	return e.id
}

// StartTask moves a Pending task to Running and returns without waiting for
// it to finish.
func (m *Manager) StartTask(id string) error {
	// Held until the goroutine is tracked so Shutdown cannot miss it.
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerClosed
	}

	e, ok := m.tasks[id]
	if !ok {
		return errors.NewTaskError(errors.ErrTaskNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.transition(status.Running, ""); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	e.cancel = cancel
	e.startedAt = time.Now()

	logger.Infof("Starting task %s (%s)", id, e.task.Name())

	m.runTask(func() {
		m.execute(ctx, e)
	})

	return nil
}

func (m *Manager) execute(ctx context.Context, e *entry) {
	err := e.task.Run(ctx, task.Env{Pool: m.pool, Progress: e.state.Tracker()})

	e.mu.Lock()
	e.cancel()

	to := status.Completed

	var reason string

	switch {
	case err == nil:
	case isCancellation(err) && (e.cancelRequested || ctx.Err() != nil):
		to = status.Cancelled
	default:
		to = status.Failed
		reason = err.Error()
	}

	if terr := e.transition(to, reason); terr != nil {
		logger.Errorf("Task %s: %v", e.id, terr)
	}

	snap := e.snapshot()
	e.mu.Unlock()

	if to == status.Failed {
		logger.Errorf("Task %s failed: %s", snap.ID, snap.Error)
	} else {
		logger.Infof("Task %s %s", snap.ID, snap.Status)
	}

	m.finish(e, snap)
}

// isCancellation reports whether err is the unwinding of a cancelled
// context rather than a failure of the work itself.
func isCancellation(err error) bool {
	return errors.Is(err, errors.ErrCancelled) || errors.Is(err, context.Canceled)
}

// finish records a terminal snapshot and then releases waiters, so Wait
// observes the history record.
func (m *Manager) finish(e *entry, snap Snapshot) {
	defer close(e.done)

	metrics.TasksFinished.WithLabelValues(snap.Status.String()).Inc()

	if m.repository == nil {
		return
	}

	if err := m.repository.Save(snap.Record()); err != nil {
		logger.Warnf("Failed to save history for task %s: %v", snap.ID, err)
	}
}

// GetTaskInfo returns a snapshot of the task, or false if the id is unknown.
func (m *Manager) GetTaskInfo(id string) (Snapshot, bool) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot(), true
}

// ListTasks returns snapshots of every registered task in append order.
func (m *Manager) ListTasks() []Snapshot {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.tasks[id])
	}
	m.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		snaps = append(snaps, e.snapshot())
		e.mu.Unlock()
	}

	return snaps
}

// CancelTask cancels a Pending task at once. A Running task is signalled and
// becomes Cancelled once its transfers have unwound.
func (m *Manager) CancelTask(id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()

	switch st := e.state.Status(); st {
	case status.Pending:
		if err := e.transition(status.Cancelled, ""); err != nil {
			e.mu.Unlock()
			return err
		}

		snap := e.snapshot()
		e.mu.Unlock()

		logger.Infof("Task %s cancelled before start", id)
		m.finish(e, snap)

		return nil

	case status.Running:
		e.cancelRequested = true
		e.cancel()
		e.mu.Unlock()

		logger.Infof("Cancelling task %s", id)

		return nil

	default:
		e.mu.Unlock()

		return fmt.Errorf("%w: %s is %s", errors.ErrInvalidTaskState, id, st)
	}
}

// RemoveTask drops a Pending or terminal task from the registry. History
// records are kept.
func (m *Manager) RemoveTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return errors.NewTaskError(errors.ErrTaskNotFound, id)
	}

	st := e.state.Status()

	if st == status.Running {
		return fmt.Errorf("%w: %s is %s", errors.ErrInvalidTaskState, id, st)
	}

	delete(m.tasks, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })

	return nil
}

// Wait blocks until the task is terminal or ctx is done, and returns the
// latest snapshot.
func (m *Manager) Wait(ctx context.Context, id string) (Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	select {
	case <-e.done:
	case <-ctx.Done():
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot(), ctx.Err()
}

// Shutdown cancels every running task, waits for them to unwind and closes
// the history repository.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}

	m.closed = true
	m.mu.Unlock()

	logger.Infof("Shutting down task manager")

	m.cancelFunc()

	waitChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waitChan)
	}()

	var err error

	select {
	case <-waitChan:
	case <-ctx.Done():
		err = ctx.Err()
		logger.Warnf("Shutdown timed out, some tasks may not have completed")
	}

	if m.repository != nil {
		if cerr := m.repository.Close(); cerr != nil {
			logger.Errorf("Error closing repository: %v", cerr)
			err = errors.Join(err, cerr)
		}
	}

	return err
}
