package enrich

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"signalsource-engine/internal/store"
)

// Hosts that a "official website" search surfaces but that are never the
// company's own site.
var domainBlocklist = []string{
	"linkedin.com",
	"twitter.com",
	"x.com",
	"github.com",
	"facebook.com",
	"instagram.com",
	"youtube.com",
	"medium.com",
	"substack.com",
	"crunchbase.com",
	"pitchbook.com",
	"angel.co",
	"wellfound.com",
	"producthunt.com",
	"wikipedia.org",
	"duckduckgo.com",
}

// Enricher resolves a founder's company name to a website domain via a
// DuckDuckGo HTML search, caching results (including misses) in sqlite.
type Enricher struct {
	DB        *sql.DB
	SearchURL string // override for tests
	Client    *http.Client
}

func New(db *sql.DB) *Enricher {
	return &Enricher{
		DB:        db,
		SearchURL: "https://duckduckgo.com/html/",
		Client:    &http.Client{Timeout: 12 * time.Second},
	}
}

// CompanyDomain returns the cached domain for company, searching for it on
// a cache miss. The empty string means no usable domain was found; that
// outcome is cached too.
func (e *Enricher) CompanyDomain(ctx context.Context, company string) (string, error) {
	dom, ok, err := store.GetCompanyDomain(ctx, e.DB, company)
	if err != nil {
		return "", err
	}
	if ok {
		return dom, nil
	}

	found, err := e.findDomainDDG(ctx, company)
	if err != nil {
		return "", err
	}

	if err := store.UpsertCompanyDomain(ctx, e.DB, company, found); err != nil {
		return "", err
	}
	return found, nil
}

// EnrichFounder fills the founder's company_domain column if it is still
// blank and the company name resolves to something.
func (e *Enricher) EnrichFounder(ctx context.Context, userID string, f store.FounderRow) error {
	if f.CompanyDomain != "" || strings.TrimSpace(f.Company) == "" {
		return nil
	}
	dom, err := e.CompanyDomain(ctx, f.Company)
	if err != nil || dom == "" {
		return err
	}
	return store.SetFounderCompanyDomain(ctx, e.DB, userID, f.ID, dom)
}

func (e *Enricher) findDomainDDG(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", nil
	}

	query := fmt.Sprintf("%s official website", sanitizeCompanyForSearch(company))
	u := e.SearchURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := e.Client.Do(req)
	if err != nil {
		// search failures are soft: we simply don't enrich this pass
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil
	}

	var best string

	// DDG HTML results: <a class="result__a" href="...">
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}

		host := hostFromURL(decodeDDGRedirect(href))
		if host == "" {
			return true
		}

		host = strings.ToLower(strings.TrimPrefix(host, "www."))
		if isBlockedDomain(host) {
			return true
		}

		best = host
		return false // first good domain wins
	})

	return best, nil
}

func decodeDDGRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	// DDG sometimes uses /l/?uddg=<urlencoded>
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if dec, err := url.QueryUnescape(uddg); err == nil && dec != "" {
			return dec
		}
	}
	return href
}

func hostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func isBlockedDomain(host string) bool {
	for _, b := range domainBlocklist {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

func sanitizeCompanyForSearch(s string) string {
	repls := []string{
		", Inc.", "", " Inc.", "", " Inc", "",
		", LLC", "", " LLC", "",
		", Ltd.", "", " Ltd.", "", " Ltd", "",
		" Pvt", "",
		" Technologies", "",
	}
	s = strings.NewReplacer(repls...).Replace(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
