package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Company-domain cache. Keys are normalized company names so that
// "BillStack" and "billstack inc" share one cached lookup.

func normalizeCompanyKey(company string) string {
	k := strings.ToLower(strings.TrimSpace(company))
	for _, suffix := range []string{" inc.", " inc", " llc", " ltd.", " ltd", " pvt", " labs"} {
		k = strings.TrimSuffix(k, suffix)
	}
	return strings.TrimSpace(k)
}

func GetCompanyDomain(ctx context.Context, db *sql.DB, company string) (string, bool, error) {
	key := normalizeCompanyKey(company)
	if key == "" {
		return "", false, nil
	}

	var dom string
	err := db.QueryRowContext(ctx,
		`SELECT domain FROM company_domains WHERE company = ? LIMIT 1;`, key).Scan(&dom)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return dom, true, nil
}

// UpsertCompanyDomain caches a lookup result. Empty domains are stored too,
// as negative entries, so we don't re-scrape companies with no findable site.
func UpsertCompanyDomain(ctx context.Context, db *sql.DB, company, dom string) error {
	key := normalizeCompanyKey(company)
	if key == "" {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
INSERT INTO company_domains (company, domain, fetched_at)
VALUES (?,?,?)
ON CONFLICT(company) DO UPDATE SET
  domain = excluded.domain,
  fetched_at = excluded.fetched_at;`,
		key, dom, now)
	return err
}
