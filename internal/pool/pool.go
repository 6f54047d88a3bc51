package pool

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/NamanBalaji/mcfetch/internal/metrics"
)

// Pool bounds the number of network operations in flight across every task
// that shares it.
type Pool struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New creates a pool with size slots. Sizes below one are raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}

	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// func must be called exactly once.
func (p *Pool) Acquire(ctx context.Context) (func(), error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	n := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	metrics.PoolInUse.Inc()

	var released atomic.Bool

	return func() {
		if !released.CompareAndSwap(false, true) {
			return
		}

		p.inFlight.Add(-1)
		metrics.PoolInUse.Dec()
		p.sem.Release(1)
	}, nil
}

// Size returns the configured number of slots.
func (p *Pool) Size() int {
	return p.size
}

// InFlight returns the number of slots currently held.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Peak returns the highest number of slots ever held at once.
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}
