package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

// fakeClock drives Gate/Retrier without real sleeping.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func newTestGate(c *fakeClock, base, maxBackoff time.Duration) *Gate {
	g := NewGate(base, maxBackoff)
	g.now = c.now
	g.sleep = c.sleep
	return g
}

func TestGateEnforcesBaseInterval(t *testing.T) {
	c := newFakeClock()
	g := newTestGate(c, 2*time.Second, time.Minute)
	ctx := context.Background()

	_ = g.Do(ctx, func() error { return nil })
	_ = g.Do(ctx, func() error { return nil })

	// second op must have waited the full base interval
	assert.Equal(t, 1, len(c.sleeps))
	assert.Equal(t, 2*time.Second, c.sleeps[0])
}

func TestGateBacksOffOnRateLimitAndResetsOnSuccess(t *testing.T) {
	c := newFakeClock()
	g := newTestGate(c, 2*time.Second, time.Minute)
	ctx := context.Background()

	rl := &RateLimitError{}

	err := g.Do(ctx, func() error { return rl })
	assert.Equal(t, true, errors.Is(err, rl))
	assert.Equal(t, 4*time.Second, g.Interval())

	_ = g.Do(ctx, func() error { return rl })
	assert.Equal(t, 8*time.Second, g.Interval())

	// next operation is spaced by at least base*multiplier
	c.sleeps = nil
	_ = g.Do(ctx, func() error { return nil })
	if len(c.sleeps) != 1 || c.sleeps[0] < 8*time.Second {
		t.Fatalf("expected >=8s spacing, got %v", c.sleeps)
	}
	assert.Equal(t, 2*time.Second, g.Interval())
}

func TestGateBackoffCap(t *testing.T) {
	c := newFakeClock()
	g := newTestGate(c, 2*time.Second, 10*time.Second)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_ = g.Do(ctx, func() error { return &RateLimitError{} })
	}
	assert.Equal(t, 10*time.Second, g.Interval())
}

func TestGatePlainErrorsDoNotBackOff(t *testing.T) {
	c := newFakeClock()
	g := newTestGate(c, 2*time.Second, time.Minute)

	_ = g.Do(context.Background(), func() error { return errors.New("boom") })
	assert.Equal(t, 2*time.Second, g.Interval())
}

func newTestRetrier(c *fakeClock, attempts int) *Retrier {
	r := NewRetrier(attempts)
	r.now = c.now
	r.sleep = c.sleep
	return r
}

func TestRetrierSucceedsAfterTransientFailure(t *testing.T) {
	c := newFakeClock()
	r := newTestRetrier(c, 2)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, c.sleeps)
}

func TestRetrierRateLimitRetriedExactlyOnce(t *testing.T) {
	c := newFakeClock()
	r := newTestRetrier(c, 3)

	calls := 0
	rl := &RateLimitError{}
	err := r.Do(context.Background(), func() error {
		calls++
		return rl
	})

	assert.Equal(t, true, errors.Is(err, rl))
	assert.Equal(t, 2, calls) // not 3: rate limits get one retry, period
	assert.Equal(t, []time.Duration{8 * time.Second}, c.sleeps)
}

func TestRetrierHonorsProviderReset(t *testing.T) {
	c := newFakeClock()
	r := newTestRetrier(c, 2)

	reset := c.now().Add(45 * time.Second)
	calls := 0
	_ = r.Do(context.Background(), func() error {
		calls++
		return &RateLimitError{Reset: reset}
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{45 * time.Second}, c.sleeps)
}

func TestRetrierResetFloorIs30s(t *testing.T) {
	c := newFakeClock()
	r := newTestRetrier(c, 2)

	reset := c.now().Add(3 * time.Second)
	_ = r.Do(context.Background(), func() error {
		return &RateLimitError{Reset: reset}
	})

	assert.Equal(t, []time.Duration{30 * time.Second}, c.sleeps)
}

func TestIsRateLimited(t *testing.T) {
	assert.Equal(t, true, IsRateLimited(&RateLimitError{}))
	assert.Equal(t, true, IsRateLimited(errors.Join(errors.New("x"), &RateLimitError{})))
	assert.Equal(t, false, IsRateLimited(errors.New("x")))
	assert.Equal(t, false, IsRateLimited(nil))
}
