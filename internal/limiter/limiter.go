// Package limiter serializes outbound calls to shared rate-limited
// resources. One Gate instance is created at process start and injected into
// everything that talks to a provider or the store; there is deliberately no
// package-level singleton.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// RateLimitError marks a failure caused by provider throttling. Reset, when
// known, is the provider-supplied time at which the quota refills.
type RateLimitError struct {
	Reset time.Time
	Err   error
}

func (e *RateLimitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error     { return e.Err }
func (e *RateLimitError) RateLimited() bool { return true }

type rateLimited interface{ RateLimited() bool }

// IsRateLimited reports whether any error in the chain is a throttling
// signal (RateLimitError or anything else with RateLimited() true).
func IsRateLimited(err error) bool {
	var rl rateLimited
	return errors.As(err, &rl) && rl.RateLimited()
}

// ResetTime extracts the provider-supplied quota reset time, if any.
func ResetTime(err error) (time.Time, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) && !rle.Reset.IsZero() {
		return rle.Reset, true
	}
	return time.Time{}, false
}

// Gate runs operations strictly one at a time with a minimum interval
// between them. A rate-limited failure doubles the spacing (capped so
// base*multiplier never exceeds maxBackoff); any success resets it.
type Gate struct {
	mu         sync.Mutex
	base       time.Duration
	maxBackoff time.Duration
	multiplier int
	last       time.Time

	// test seams
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewGate(base, maxBackoff time.Duration) *Gate {
	if base <= 0 {
		base = 2 * time.Second
	}
	if maxBackoff < base {
		maxBackoff = base
	}
	return &Gate{
		base:       base,
		maxBackoff: maxBackoff,
		multiplier: 1,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Do waits its turn, enforces the current spacing since the previous
// operation, runs fn, and adjusts the backoff based on the outcome. The
// operation's own error is returned untouched.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := g.interval() - g.now().Sub(g.last); wait > 0 {
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}

	err := fn()
	g.last = g.now()

	if err != nil {
		if IsRateLimited(err) {
			g.multiplier *= 2
			if max := int(g.maxBackoff / g.base); g.multiplier > max {
				g.multiplier = max
			}
		}
		return err
	}

	g.multiplier = 1
	return nil
}

// Interval reports the spacing the next operation will honor.
func (g *Gate) Interval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.interval()
}

func (g *Gate) interval() time.Duration {
	d := g.base * time.Duration(g.multiplier)
	if d > g.maxBackoff {
		d = g.maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
