package acquire

import (
	"context"
	"math"
	"time"
)

const (
	DefaultBackoffBase = 1.5
	DefaultPause       = 600 * time.Millisecond
)

// Delay blocks between attempts. attempt is the 1-based index of the attempt
// that just finished.
type Delay func(ctx context.Context, attempt int)

// ExponentialDelay waits base^attempt seconds followed by pause. It returns
// early if ctx is done.
func ExponentialDelay(base float64, pause time.Duration) Delay {
	return func(ctx context.Context, attempt int) {
		d := time.Duration(math.Pow(base, float64(max(0, attempt))) * float64(time.Second))
		sleep(ctx, d+pause)
	}
}

func DefaultDelay() Delay {
	return ExponentialDelay(DefaultBackoffBase, DefaultPause)
}

// NoDelay never waits.
func NoDelay(context.Context, int) {}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
