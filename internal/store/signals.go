package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SignalRow struct {
	ID              string `json:"id"`
	FounderID       string `json:"founderId"`
	Source          string `json:"source"`
	SignalType      string `json:"signalType"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	Strength        int    `json:"strength"`
	EngagementCount int    `json:"engagementCount"`
	FollowersCount  int    `json:"followersCount"`
	DetectedAt      string `json:"detectedAt"`
	CreatedAt       string `json:"createdAt"`
}

// InsertSignalIgnore inserts the signal unless one with the same id already
// exists for the user. Returns whether a row was actually added, which lets
// repeated ingestion passes over the same upstream items stay idempotent.
func InsertSignalIgnore(ctx context.Context, db *sql.DB, userID string, s SignalRow) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
INSERT OR IGNORE INTO signals
  (id, user_id, founder_id, source, signal_type, title, description, url,
   strength, engagement_count, followers_count, detected_at, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		s.ID, userID, s.FounderID, s.Source, s.SignalType, s.Title, s.Description,
		s.URL, s.Strength, s.EngagementCount, s.FollowersCount, s.DetectedAt, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert signal %s: %w", s.ID, err)
	}

	var changes int
	if err := tx.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return changes > 0, nil
}

// ListSignals returns the user's signals, newest first.
func ListSignals(ctx context.Context, db *sql.DB, userID string, limit int) ([]SignalRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, founder_id, source, signal_type, title, description, url,
       strength, engagement_count, followers_count, detected_at, created_at
FROM signals
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRow
	for rows.Next() {
		var s SignalRow
		if err := rows.Scan(
			&s.ID, &s.FounderID, &s.Source, &s.SignalType, &s.Title,
			&s.Description, &s.URL, &s.Strength, &s.EngagementCount,
			&s.FollowersCount, &s.DetectedAt, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSignals reports how many signals the user has in total.
func CountSignals(ctx context.Context, db *sql.DB, userID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signals WHERE user_id = ?;`, userID).Scan(&n)
	return n, err
}
