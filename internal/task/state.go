package task

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/progress"
	"github.com/NamanBalaji/mcfetch/internal/status"
)

// State is the lifecycle status and byte progress of one task. The manager
// moves the status; the task's transfers feed the tracker.
type State struct {
	mu      sync.RWMutex
	status  status.Status
	reason  string
	tracker *progress.Tracker
}

// NewState returns a Pending state with an unsized tracker.
func NewState() *State {
	return &State{status: status.Pending, tracker: progress.NewTracker()}
}

func (s *State) Status() status.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Reason is the failure message recorded with the last transition.
func (s *State) Reason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reason
}

func (s *State) Tracker() *progress.Tracker {
	return s.tracker
}

func (s *State) Progress() progress.Progress {
	return s.tracker.Snapshot()
}

// Transition moves the state to `to` and records reason alongside it.
func (s *State) Transition(to status.Status, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.CanTransition(s.status, to) {
		return fmt.Errorf("%w: %s to %s", errors.ErrInvalidTaskState, s.status, to)
	}

	s.status = to
	s.reason = reason

	return nil
}

// Base reports the status and progress of the State bound to a task. Embed
// it in a Task implementation.
type Base struct {
	state atomic.Pointer[State]
}

func (b *Base) Bind(s *State) {
	b.state.Store(s)
}

// Status is Pending until the task is bound.
func (b *Base) Status() status.Status {
	if s := b.state.Load(); s != nil {
		return s.Status()
	}

	return status.Pending
}

func (b *Base) Progress() progress.Progress {
	if s := b.state.Load(); s != nil {
		return s.Progress()
	}

	return progress.Progress{}
}
