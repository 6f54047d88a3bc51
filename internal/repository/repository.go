package repository

import (
	"time"

	"github.com/NamanBalaji/mcfetch/internal/status"
)

// TaskRecord is the history entry written when a task reaches a terminal
// status. It is an audit trail, not a resume point.
type TaskRecord struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Status     status.Status `json:"status"`
	Error      string        `json:"error,omitempty"`
	Completed  uint64        `json:"completed"`
	Total      uint64        `json:"total"`
	CreatedAt  time.Time     `json:"createdAt"`
	StartedAt  time.Time     `json:"startedAt,omitzero"`
	FinishedAt time.Time     `json:"finishedAt,omitzero"`
}

type Repository interface {
	Save(record *TaskRecord) error
	Find(id string) (*TaskRecord, error)
	FindAll() ([]*TaskRecord, error)
	Delete(id string) error
	Close() error
}
