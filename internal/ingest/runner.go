// Package ingest runs the signal collection passes: fan out to the provider
// clients, merge and gate the leads, persist them in paced batches through
// the shared write gate, then refresh the read model and notify SSE clients.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"signalsource-engine/internal/config"
	"signalsource-engine/internal/domain"
	"signalsource-engine/internal/enrich"
	"signalsource-engine/internal/events"
	"signalsource-engine/internal/fetch"
	"signalsource-engine/internal/limiter"
	"signalsource-engine/internal/store"
)

var (
	// ErrPassInProgress is returned when a pass is already holding the lock.
	ErrPassInProgress = errors.New("ingestion pass already running")
	// ErrCooldown is returned when the previous pass finished too recently.
	ErrCooldown = errors.New("ingestion on cooldown")
)

// Status is the snapshot served by /api/ingest/status and pushed on the
// event stream around each pass.
type Status struct {
	Running     bool      `json:"running"`
	Live        bool      `json:"live"`
	LastRunAt   time.Time `json:"lastRunAt,omitzero"`
	LastOkAt    time.Time `json:"lastOkAt,omitzero"`
	LastAdded   int       `json:"lastAdded"`
	LastError   string    `json:"lastError,omitempty"`
	RateLimited bool      `json:"rateLimited"`
	UsedDemo    bool      `json:"usedDemo"`
}

type Runner struct {
	DB       *sql.DB
	Cfg      func() config.Config
	Gate     *limiter.Gate
	Retrier  *limiter.Retrier
	Fetchers []fetch.Fetcher
	Hub      *events.Hub
	Enricher *enrich.Enricher // nil disables enrichment
	UserID   string

	passMu sync.Mutex
	status atomic.Value // Status
	live   atomic.Bool

	// test seams
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewRunner(db *sql.DB, cfg func() config.Config, gate *limiter.Gate, fetchers []fetch.Fetcher, hub *events.Hub, userID string) *Runner {
	r := &Runner{
		DB:       db,
		Cfg:      cfg,
		Gate:     gate,
		Retrier:  limiter.NewRetrier(3),
		Fetchers: fetchers,
		Hub:      hub,
		UserID:   userID,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	r.live.Store(true)
	r.status.Store(Status{Live: true})
	return r
}

func (r *Runner) Status() Status {
	s := r.status.Load().(Status)
	s.Live = r.live.Load()
	return s
}

func (r *Runner) Live() bool { return r.live.Load() }

func (r *Runner) SetLive(on bool) {
	r.live.Store(on)
	r.publish(events.TypeIngestFinished, r.Status())
}

// RunOnce executes one full ingestion pass. cooldown is the minimum time
// since the previous successful pass; zero forces the run. A second caller
// while a pass is active gets ErrPassInProgress immediately rather than
// queueing.
func (r *Runner) RunOnce(ctx context.Context, cooldown time.Duration) (Status, error) {
	if !r.passMu.TryLock() {
		return r.Status(), ErrPassInProgress
	}
	defer r.passMu.Unlock()

	// Only a successful pass consumes the cooldown; after a failed one the
	// next attempt may go straight through.
	st := r.Status()
	if cooldown > 0 && !st.LastOkAt.IsZero() && r.now().Sub(st.LastOkAt) < cooldown {
		return st, ErrCooldown
	}

	st.Running = true
	st.LastError = ""
	r.setStatus(st)
	r.publish(events.TypeIngestStarted, st)

	st = r.pass(ctx, st)

	st.Running = false
	st.LastRunAt = r.now()
	if st.LastError == "" {
		st.LastOkAt = st.LastRunAt
	}
	r.setStatus(st)
	r.publish(events.TypeIngestFinished, st)

	return st, nil
}

func (r *Runner) pass(ctx context.Context, st Status) Status {
	cfg := r.Cfg()

	leads, rateLimited := r.collect(ctx)
	st.RateLimited = rateLimited
	st.UsedDemo = false

	leads = gateStrength(dedupe(leads), cfg.Ingest.MinStrength)

	if len(leads) == 0 {
		log.Printf("[ingest] no provider leads, falling back to demo dataset")
		leads = gateStrength(fetch.DemoLeads(r.now()), cfg.Ingest.MinStrength)
		st.UsedDemo = true
	}

	added, err := r.persist(ctx, cfg, leads)
	if err != nil {
		st.LastError = err.Error()
		log.Printf("[ingest] pass aborted: %v", err)
		return st
	}
	st.LastAdded = added
	log.Printf("[ingest] pass stored %d new signal(s) from %d lead(s)", added, len(leads))

	if r.Enricher != nil && cfg.Enrich.Enabled {
		r.enrichFounders(ctx)
	}

	if err := r.RefreshReadModel(ctx); err != nil {
		// stale lists are tolerable; the stored data is intact
		log.Printf("[ingest] read model refresh failed: %v", err)
	}
	return st
}

// collect fans out to every provider concurrently with error isolation: one
// provider failing, throttling or mangling its query never costs us the
// other's leads.
func (r *Runner) collect(ctx context.Context) ([]domain.SignalLead, bool) {
	var (
		mu          sync.Mutex
		leads       []domain.SignalLead
		rateLimited bool
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range r.Fetchers {
		f := f
		g.Go(func() error {
			res, err := f.Fetch(ctx)
			if err != nil {
				log.Printf("[ingest] %s fetch failed: %v", f.Name(), err)
				if limiter.IsRateLimited(err) {
					mu.Lock()
					rateLimited = true
					mu.Unlock()
				}
				return nil
			}
			if res.Message != "" {
				log.Printf("[ingest] %s: %s", f.Name(), res.Message)
			}

			mu.Lock()
			leads = append(leads, res.Leads...)
			rateLimited = rateLimited || res.RateLimited
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return leads, rateLimited
}

// persist writes leads in small paced batches, every statement going through
// the shared gate with retries. A lead whose writes keep failing is logged
// and skipped so the rest of the batch still lands; only context
// cancellation aborts the loop. Returns how many signals were newly added;
// founder counters move once per processed lead, duplicates included.
func (r *Runner) persist(ctx context.Context, cfg config.Config, leads []domain.SignalLead) (int, error) {
	batchSize := cfg.Persist.BatchSize
	if batchSize <= 0 {
		batchSize = 2
	}
	opDelay := time.Duration(cfg.Persist.OpDelayMs) * time.Millisecond
	itemDelay := time.Duration(cfg.Persist.ItemDelayMs) * time.Millisecond
	batchDelay := time.Duration(cfg.Persist.BatchDelayMs) * time.Millisecond

	added := 0
	for i, lead := range leads {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		ok, err := r.persistLead(ctx, lead, opDelay)
		if err != nil {
			if ctx.Err() != nil {
				return added, ctx.Err()
			}
			log.Printf("[ingest] skipping %s: %v", lead.Signal.ID, err)
		} else if ok {
			added++
		}

		if i == len(leads)-1 {
			break
		}
		delay := itemDelay
		if (i+1)%batchSize == 0 {
			delay = batchDelay
		}
		if err := r.sleep(ctx, delay); err != nil {
			return added, err
		}
	}
	return added, nil
}

// persistLead writes one lead's founder and signal rows. The bool reports
// whether the signal row was newly added.
func (r *Runner) persistLead(ctx context.Context, lead domain.SignalLead, opDelay time.Duration) (bool, error) {
	if err := r.gated(ctx, func() error {
		return store.UpsertFounder(ctx, r.DB, r.UserID, founderRow(lead))
	}); err != nil {
		return false, fmt.Errorf("founder upsert: %w", err)
	}

	if err := r.sleep(ctx, opDelay); err != nil {
		return false, err
	}

	var ok bool
	if err := r.gated(ctx, func() error {
		var err error
		ok, err = store.InsertSignalIgnore(ctx, r.DB, r.UserID, signalRow(lead.Signal))
		return err
	}); err != nil {
		return false, fmt.Errorf("signal insert: %w", err)
	}
	return ok, nil
}

// RefreshReadModel re-reads the signal and founder lists (concurrently, each
// through the gate with retries) and pushes the fresh view models to SSE
// subscribers.
func (r *Runner) RefreshReadModel(ctx context.Context) error {
	cfg := r.Cfg()

	var (
		signals  []store.SignalRow
		founders []store.FounderRow
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.gated(ctx, func() error {
			var err error
			signals, err = store.ListSignals(ctx, r.DB, r.UserID, cfg.Read.SignalsLimit)
			return err
		})
	})
	g.Go(func() error {
		return r.gated(ctx, func() error {
			var err error
			founders, err = store.ListFounders(ctx, r.DB, r.UserID, cfg.Read.FoundersLimit)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	r.publish(events.TypeSignalsUpdated, map[string]int{"count": len(signals)})
	r.publish(events.TypeFoundersUpdated, map[string]int{"count": len(founders)})
	r.publish(events.TypeStatsUpdated, nil)
	return nil
}

func (r *Runner) enrichFounders(ctx context.Context) {
	founders, err := store.ListFounders(ctx, r.DB, r.UserID, r.Cfg().Read.FoundersLimit)
	if err != nil {
		log.Printf("[enrich] list founders: %v", err)
		return
	}
	for _, f := range founders {
		if f.CompanyDomain != "" || f.Company == "" {
			continue
		}
		if err := r.gated(ctx, func() error {
			return r.Enricher.EnrichFounder(ctx, r.UserID, f)
		}); err != nil {
			log.Printf("[enrich] %s: %v", f.ID, err)
		}
	}
}

// gated runs fn under the shared gate, wrapped in the retry policy.
func (r *Runner) gated(ctx context.Context, fn func() error) error {
	return r.Retrier.Do(ctx, func() error {
		return r.Gate.Do(ctx, fn)
	})
}

func (r *Runner) setStatus(st Status) { r.status.Store(st) }

func (r *Runner) publish(typ string, data any) {
	if r.Hub != nil {
		r.Hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}

// dedupe drops repeated signal IDs within one pass, first occurrence wins,
// so a founder's counter can't be bumped twice by one merged batch.
func dedupe(leads []domain.SignalLead) []domain.SignalLead {
	seen := make(map[string]struct{}, len(leads))
	out := leads[:0]
	for _, l := range leads {
		if _, dup := seen[l.Signal.ID]; dup {
			continue
		}
		seen[l.Signal.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// gateStrength keeps only leads at or above the minimum strength.
func gateStrength(leads []domain.SignalLead, min int) []domain.SignalLead {
	out := leads[:0]
	for _, l := range leads {
		if l.Signal.Strength >= min {
			out = append(out, l)
		}
	}
	return out
}

func founderRow(lead domain.SignalLead) store.FounderRow {
	f := lead.Founder
	return store.FounderRow{
		ID:             lead.Signal.FounderID,
		Name:           f.Name,
		Company:        f.Company,
		Description:    f.Description,
		Location:       f.Location,
		Score:          lead.Signal.Strength,
		TwitterHandle:  usernameFor(lead, domain.SourceTwitter),
		GithubUsername: usernameFor(lead, domain.SourceGithub),
	}
}

func usernameFor(lead domain.SignalLead, src domain.Source) string {
	if lead.Signal.Source == src {
		return lead.Founder.Username
	}
	return ""
}

func signalRow(s domain.Signal) store.SignalRow {
	return store.SignalRow{
		ID:              s.ID,
		FounderID:       s.FounderID,
		Source:          string(s.Source),
		SignalType:      string(s.Type),
		Title:           s.Title,
		Description:     s.Description,
		URL:             s.URL,
		Strength:        domain.Clamp(s.Strength),
		EngagementCount: s.EngagementCount,
		FollowersCount:  s.FollowersCount,
		DetectedAt:      s.DetectedAt.UTC().Format(time.RFC3339),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
