// Package api serves read-mostly JSON views of a task manager. Clients poll;
// nothing is pushed.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NamanBalaji/mcfetch/internal/engine"
	"github.com/NamanBalaji/mcfetch/internal/errors"
	"github.com/NamanBalaji/mcfetch/internal/logger"
)

// TaskManager is the subset of engine.Manager the API needs.
type TaskManager interface {
	ListTasks() []engine.Snapshot
	GetTaskInfo(id string) (engine.Snapshot, bool)
	CancelTask(id string) error
}

// TaskHandler handles task requests.
type TaskHandler struct {
	manager TaskManager
}

func NewTaskHandler(manager TaskManager) *TaskHandler {
	return &TaskHandler{manager: manager}
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.ListTasks())
}

// GetTask handles GET /tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")

	snap, ok := h.manager.GetTaskInfo(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// CancelTask handles POST /tasks/{taskID}/cancel. A Running task is reported
// as accepted since it becomes Cancelled asynchronously.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")

	err := h.manager.CancelTask(id)

	switch {
	case err == nil:
	case errors.Is(err, errors.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
		return
	case errors.Is(err, errors.ErrInvalidTaskState):
		writeError(w, http.StatusConflict, err.Error())
		return
	default:
		logger.Errorf("Failed to cancel task %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	snap, _ := h.manager.GetTaskInfo(id)
	writeJSON(w, http.StatusAccepted, snap)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
