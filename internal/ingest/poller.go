package ingest

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"signalsource-engine/internal/scheduler"
)

// StartPoller runs the background ingestion loop. The first pass fires
// shortly after startup so the dashboard fills without a manual refresh,
// with a looser cooldown than the recurring timer passes. Passes are skipped
// while live mode is off.
func (r *Runner) StartPoller(ctx context.Context) {
	cfg := r.Cfg()
	interval := time.Duration(cfg.Ingest.PollSeconds) * time.Second

	// the immediate run and the ticker loop invoke the task from different
	// goroutines, so the first-pass flag has to be atomic
	var first atomic.Bool
	first.Store(true)

	go func() {
		// let the HTTP surface come up before the first provider calls
		if err := r.sleep(ctx, 2*time.Second); err != nil {
			return
		}

		scheduler.Every(ctx, interval, "ingest-poll", func(ctx context.Context) error {
			if !r.live.Load() {
				return nil
			}

			cooldown := time.Duration(r.Cfg().Ingest.RefreshCooldownSeconds) * time.Second
			if first.CompareAndSwap(true, false) {
				cooldown = time.Duration(r.Cfg().Ingest.BackgroundCooldownSeconds) * time.Second
			}

			_, err := r.RunOnce(ctx, cooldown)
			switch {
			case errors.Is(err, ErrCooldown):
				log.Printf("[ingest-poll] skipping pass, last run too recent")
				return nil
			case errors.Is(err, ErrPassInProgress):
				return nil
			default:
				return err
			}
		})
	}()
}
