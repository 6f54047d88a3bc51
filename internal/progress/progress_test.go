package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/NamanBalaji/mcfetch/internal/logger"
)

func TestTracker_UnsizedReportsZero(t *testing.T) {
	tr := NewTracker()
	tr.Add(10)

	assert.False(t, tr.Sized())
	assert.Equal(t, Progress{}, tr.Snapshot())
}

func TestTracker_AddBeforeTotalWarns(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, zerolog.WarnLevel)
	defer logger.Close()

	tr := NewTracker()
	assert.Zero(t, tr.Add(10))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "Dropped 10 progress bytes")

	buf.Reset()
	tr.SetTotal(20)
	assert.Equal(t, uint64(5), tr.Add(5))
	assert.Empty(t, buf.String())
	assert.Equal(t, Progress{Completed: 5, Total: 20}, tr.Snapshot())
}

func TestTracker_TotalIsSetOnce(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.SetTotal(100))
	assert.False(t, tr.SetTotal(200))
	assert.Equal(t, uint64(100), tr.Snapshot().Total)
}

func TestTracker_AddClampsToTotal(t *testing.T) {
	tr := NewTracker()
	tr.SetTotal(10)

	assert.Equal(t, uint64(6), tr.Add(6))
	assert.Equal(t, uint64(6), tr.Add(0))
	assert.Equal(t, uint64(10), tr.Add(6))
	assert.Equal(t, Progress{Completed: 10, Total: 10}, tr.Snapshot())
}

func TestTracker_ConcurrentAddsAreMonotonic(t *testing.T) {
	tr := NewTracker()
	tr.SetTotal(64 * 1000)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tr.Add(1)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var last uint64
	for {
		p := tr.Snapshot()
		assert.LessOrEqual(t, p.Completed, p.Total)
		assert.GreaterOrEqual(t, p.Completed, last)
		last = p.Completed

		select {
		case <-done:
			assert.Equal(t, Progress{Completed: 64000, Total: 64000}, tr.Snapshot())
			return
		default:
		}
	}
}

func TestProgress_Percentage(t *testing.T) {
	assert.Equal(t, 0.0, Progress{}.Percentage())
	assert.Equal(t, 50.0, Progress{Completed: 5, Total: 10}.Percentage())
	assert.Equal(t, 100.0, Progress{Completed: 10, Total: 10}.Percentage())
}
