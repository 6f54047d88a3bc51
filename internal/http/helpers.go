package http

import (
	"context"
	"math/rand"
	"time"
)

// jitterDelay spreads a fixed retry delay by +/- 10%.
func jitterDelay(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	jitter := time.Duration(rand.Float64() * float64(base) * 0.2)

	return base + jitter - time.Duration(float64(base)*0.1)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
