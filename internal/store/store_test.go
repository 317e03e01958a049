package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	assert.Equal(t, nil, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, nil, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	assert.Equal(t, nil, Migrate(db.Pool))
}

func TestInsertSignalIgnoreDeduplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sig := SignalRow{
		ID:         "twitter_1001",
		FounderID:  "twitter_asha_builds",
		Source:     "twitter",
		SignalType: "funding",
		Title:      "we just raised our seed round",
		Strength:   80,
		DetectedAt: "2026-08-30T09:00:00Z",
	}

	added, err := InsertSignalIgnore(ctx, db.Pool, "local", sig)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, added)

	added, err = InsertSignalIgnore(ctx, db.Pool, "local", sig)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, added)

	n, err := CountSignals(ctx, db.Pool, "local")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, n)

	// same id under another user is a distinct row
	added, err = InsertSignalIgnore(ctx, db.Pool, "other", sig)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, added)
}

func TestUpsertFounderScoreIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f := FounderRow{
		ID:       "twitter_asha_builds",
		Name:     "Asha Rao",
		Company:  "BillStack",
		Location: "Bangalore, India",
		Score:    85,
	}
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", f))

	// a weaker later signal must not lower the score
	f.Score = 60
	f.Name = "someone else"
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", f))

	got, err := GetFounder(ctx, db.Pool, "local", f.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, 2, got.SignalsCount)
	assert.Equal(t, "Asha Rao", got.Name) // first-seen snapshot wins

	// a stronger one raises it
	f.Score = 92
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", f))

	got, err = GetFounder(ctx, db.Pool, "local", f.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 92, got.Score)
	assert.Equal(t, 3, got.SignalsCount)
}

func TestUpsertFounderClampsScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f := FounderRow{ID: "github_meera-dev", Name: "Meera Iyer", Score: 170}
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", f))

	got, err := GetFounder(ctx, db.Pool, "local", f.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 100, got.Score)
}

func TestListFoundersOrdersByScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", FounderRow{ID: "a", Name: "A", Score: 70}))
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", FounderRow{ID: "b", Name: "B", Score: 95}))
	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", FounderRow{ID: "c", Name: "C", Score: 80}))

	got, err := ListFounders(ctx, db.Pool, "local", 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestCompanyDomainCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, ok, err := GetCompanyDomain(ctx, db.Pool, "BillStack")
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)

	assert.Equal(t, nil, UpsertCompanyDomain(ctx, db.Pool, "BillStack Inc", "billstack.io"))

	dom, ok, err := GetCompanyDomain(ctx, db.Pool, "billstack")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
	assert.Equal(t, "billstack.io", dom)

	// negative entries are cached too
	assert.Equal(t, nil, UpsertCompanyDomain(ctx, db.Pool, "GhostCo", ""))
	dom, ok, err = GetCompanyDomain(ctx, db.Pool, "GhostCo")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
	assert.Equal(t, "", dom)
}

func TestSetFounderCompanyDomainOnlyFillsEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.Equal(t, nil, UpsertFounder(ctx, db.Pool, "local", FounderRow{ID: "x", Name: "X", Score: 50}))
	assert.Equal(t, nil, SetFounderCompanyDomain(ctx, db.Pool, "local", "x", "first.io"))
	assert.Equal(t, nil, SetFounderCompanyDomain(ctx, db.Pool, "local", "x", "second.io"))

	got, err := GetFounder(ctx, db.Pool, "local", "x")
	assert.Equal(t, nil, err)
	assert.Equal(t, "first.io", got.CompanyDomain)
}
