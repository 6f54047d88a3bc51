package progress

import (
	"sync"
	"sync/atomic"

	"github.com/NamanBalaji/mcfetch/internal/logger"
)

// Progress is a point-in-time view of a task's byte counters.
type Progress struct {
	Completed uint64 `json:"completed"`
	Total     uint64 `json:"total"`
}

// Percentage returns completion in the range 0-100. A zero total reports 0.
func (p Progress) Percentage() float64 {
	if p.Total == 0 {
		return 0
	}

	return float64(p.Completed) / float64(p.Total) * 100
}

// Tracker aggregates bytes written by concurrent workers for one task.
//
// Total is stored once, before any worker adds. Completed only grows and is
// clamped to Total.
type Tracker struct {
	mu        sync.Mutex
	total     atomic.Uint64
	sized     atomic.Bool
	completed atomic.Uint64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// SetTotal fixes the task size. It returns false if the total was already set.
func (t *Tracker) SetTotal(total uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sized.Load() {
		return false
	}

	t.total.Store(total)
	t.sized.Store(true)

	return true
}

// Sized reports whether SetTotal has been called.
func (t *Tracker) Sized() bool {
	return t.sized.Load()
}

// Add records n newly written bytes and returns the new completed count.
// Bytes added before SetTotal are dropped with a warning.
func (t *Tracker) Add(n uint64) uint64 {
	if n == 0 {
		return t.completed.Load()
	}

	if !t.sized.Load() {
		logger.Warnf("Dropped %d progress bytes reported before the total was set", n)
		return t.completed.Load()
	}

	total := t.total.Load()

	for {
		cur := t.completed.Load()

		next := cur + n
		if next > total {
			next = total
		}

		if t.completed.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Snapshot returns a consistent view. Completed is read before Total so a
// racing reader can never observe Completed > Total.
func (t *Tracker) Snapshot() Progress {
	if !t.sized.Load() {
		return Progress{}
	}

	completed := t.completed.Load()
	total := t.total.Load()

	if completed > total {
		completed = total
	}

	return Progress{Completed: completed, Total: total}
}
