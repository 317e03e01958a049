package limiter

import (
	"context"
	"time"
)

// Retrier wraps a single operation with a small, bounded retry policy.
// Rate-limited failures are retried exactly once after a long, provider-aware
// wait; anything else gets a short exponential backoff across Attempts.
type Retrier struct {
	Attempts int

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewRetrier(attempts int) *Retrier {
	if attempts <= 0 {
		attempts = 2
	}
	return &Retrier{
		Attempts: attempts,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func (r *Retrier) Do(ctx context.Context, fn func() error) error {
	var last error

	for i := 0; i < r.Attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		last = err

		if IsRateLimited(err) {
			// Retrying throttled calls compounds the penalty, so only the
			// first rate-limited failure earns another attempt.
			if i > 0 {
				return err
			}
			if err := r.sleep(ctx, r.rateLimitDelay(err, i)); err != nil {
				return err
			}
			continue
		}

		if i < r.Attempts-1 {
			if err := r.sleep(ctx, failureDelay(i)); err != nil {
				return err
			}
		}
	}

	return last
}

// rateLimitDelay honors the provider reset time when present (never less
// than 30s), otherwise falls back to 8s, 16s, ... capped at 2 minutes.
func (r *Retrier) rateLimitDelay(err error, attempt int) time.Duration {
	if reset, ok := ResetTime(err); ok {
		if d := reset.Sub(r.now()); d > 30*time.Second {
			return d
		}
		return 30 * time.Second
	}
	d := time.Duration(1<<(attempt+3)) * time.Second
	if d > 2*time.Minute {
		d = 2 * time.Minute
	}
	return d
}

// failureDelay is the short backoff for non-throttling errors: 2s, 4s, ...
func failureDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 2 * time.Second
}
