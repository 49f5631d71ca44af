package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a failure to reach a remote backend. Operations that
// fail with it are worth retrying.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff is a retry policy for remote backends: up to Attempts calls,
// sleeping Delay before the first retry and doubling it each time, capped
// at MaxDelay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultBackoff is used by backends that are not given a policy.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond, MaxDelay: time.Second}

func (b Backoff) withDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Delay <= 0 {
		b.Delay = DefaultBackoff.Delay
	}
	if b.MaxDelay < b.Delay {
		b.MaxDelay = max(b.Delay, DefaultBackoff.MaxDelay)
	}
	return b
}

// Do calls fn until it succeeds, fails with an error that is not
// [ErrUnavailable], runs out of attempts, or ctx is done.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	b = b.withDefaults()
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, ErrUnavailable) || attempt == b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(2*delay, b.MaxDelay)
	}
}
