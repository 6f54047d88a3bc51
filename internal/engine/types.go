package engine

import (
	"time"

	"github.com/NamanBalaji/mcfetch/internal/progress"
	"github.com/NamanBalaji/mcfetch/internal/repository"
	"github.com/NamanBalaji/mcfetch/internal/status"
)

// Snapshot is a consistent, copyable view of one task.
type Snapshot struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Status     status.Status     `json:"status"`
	Error      string            `json:"error,omitempty"`
	Progress   progress.Progress `json:"progress"`
	CreatedAt  time.Time         `json:"createdAt"`
	StartedAt  time.Time         `json:"startedAt,omitzero"`
	FinishedAt time.Time         `json:"finishedAt,omitzero"`
}

// Record converts the snapshot into a history entry.
func (s Snapshot) Record() *repository.TaskRecord {
	return &repository.TaskRecord{
		ID:         s.ID,
		Name:       s.Name,
		Kind:       s.Kind,
		Status:     s.Status,
		Error:      s.Error,
		Completed:  s.Progress.Completed,
		Total:      s.Progress.Total,
		CreatedAt:  s.CreatedAt,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithRepository stores a history record for every task that reaches a
// terminal status. The Manager closes the repository on Shutdown.
func WithRepository(repo repository.Repository) Option {
	return func(m *Manager) {
		m.repository = repo
	}
}
