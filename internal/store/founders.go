package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"signalsource-engine/internal/domain"
)

type FounderRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Company        string `json:"company"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Score          int    `json:"score"`
	SignalsCount   int    `json:"signalsCount"`
	TwitterHandle  string `json:"twitterHandle,omitempty"`
	GithubUsername string `json:"githubUsername,omitempty"`
	CompanyDomain  string `json:"companyDomain,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// UpsertFounder creates the founder on first sight, seeded with the
// triggering signal's strength. On conflict the row is bumped atomically:
// score keeps its high-water mark, signals_count counts every attributed
// signal. Snapshot fields (name, bio, location) stay as first seen.
func UpsertFounder(ctx context.Context, db *sql.DB, userID string, f FounderRow) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
INSERT INTO founders (id, user_id, name, company, description, location, score,
                      signals_count, twitter_handle, github_username, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,1,?,?,?,?)
ON CONFLICT(id, user_id) DO UPDATE SET
  score = MAX(score, excluded.score),
  signals_count = signals_count + 1,
  updated_at = excluded.updated_at;`,
		f.ID, userID, f.Name, f.Company, f.Description, f.Location,
		domain.Clamp(f.Score), f.TwitterHandle, f.GithubUsername, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert founder %s: %w", f.ID, err)
	}
	return nil
}

func GetFounder(ctx context.Context, db *sql.DB, userID, id string) (FounderRow, error) {
	var f FounderRow
	err := db.QueryRowContext(ctx, `
SELECT id, name, company, description, location, score, signals_count,
       twitter_handle, github_username, company_domain, created_at, updated_at
FROM founders
WHERE id = ? AND user_id = ?
LIMIT 1;`, id, userID).Scan(
		&f.ID, &f.Name, &f.Company, &f.Description, &f.Location,
		&f.Score, &f.SignalsCount, &f.TwitterHandle, &f.GithubUsername,
		&f.CompanyDomain, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return FounderRow{}, err
	}
	return f, nil
}

// ListFounders returns the user's founders ordered by score, best first.
func ListFounders(ctx context.Context, db *sql.DB, userID string, limit int) ([]FounderRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, name, company, description, location, score, signals_count,
       twitter_handle, github_username, company_domain, created_at, updated_at
FROM founders
WHERE user_id = ?
ORDER BY score DESC, updated_at DESC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FounderRow
	for rows.Next() {
		var f FounderRow
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Company, &f.Description, &f.Location,
			&f.Score, &f.SignalsCount, &f.TwitterHandle, &f.GithubUsername,
			&f.CompanyDomain, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func SetFounderCompanyDomain(ctx context.Context, db *sql.DB, userID, id, dom string) error {
	_, err := db.ExecContext(ctx, `
UPDATE founders
SET company_domain = ?
WHERE id = ? AND user_id = ?
  AND (company_domain = '' OR company_domain IS NULL);`,
		dom, id, userID)
	return err
}
