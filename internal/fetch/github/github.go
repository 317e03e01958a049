package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signalsource-engine/internal/domain"
	"signalsource-engine/internal/fetch"
	"signalsource-engine/internal/fetch/util"
	"signalsource-engine/internal/rank"
)

const defaultBaseURL = "https://api.github.com"

type Config struct {
	Query             string
	PerPage           int
	AuthorLookupLimit int // repos eligible for a per-author detail call
	AuthorMinStars    int // thresholds gating that extra call
	AuthorMinForks    int
	BaseURL           string // tests override this
}

// Client issues one repository-search call per pass, plus a bounded number
// of per-author lookups for the high-potential hits.
type Client struct {
	token   string
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New(token string, cfg Config, limiter *util.HostLimiter) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("github: token not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 30
	}
	if cfg.AuthorLookupLimit <= 0 {
		cfg.AuthorLookupLimit = 10
	}
	if cfg.AuthorMinStars <= 0 {
		cfg.AuthorMinStars = 20
	}
	if cfg.AuthorMinForks <= 0 {
		cfg.AuthorMinForks = 5
	}
	return &Client{
		token:   token,
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		now:     time.Now,
		sleep:   sleepCtx,
	}, nil
}

func (c *Client) Name() string { return "github" }

type ghUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
}

type ghRepo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language"`
	HTMLURL     string    `json:"html_url"`
	Owner       ghUser    `json:"owner"`
}

type searchResponse struct {
	TotalCount int      `json:"total_count"`
	Items      []ghRepo `json:"items"`
}

func (c *Client) Fetch(ctx context.Context) (fetch.Result, error) {
	res := fetch.Result{Source: domain.SourceGithub}

	u, err := url.Parse(c.cfg.BaseURL + "/search/repositories")
	if err != nil {
		return res, fmt.Errorf("github url: %w", err)
	}
	q := u.Query()
	q.Set("q", c.cfg.Query)
	q.Set("sort", "updated")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprint(c.cfg.PerPage))
	u.RawQuery = q.Encode()

	body, status, err := c.get(ctx, u.String())
	if err != nil {
		return res, err
	}
	if status != http.StatusOK {
		switch status {
		case http.StatusTooManyRequests, http.StatusForbidden:
			// GitHub reports search throttling as 403 with a ratelimit
			// header as often as 429; both degrade to empty.
			res.RateLimited = true
			res.Message = "github rate limit reached, try again later"
			return res, nil
		case http.StatusUnprocessableEntity:
			res.QueryError = true
			res.Message = "github search query needs refinement"
			return res, nil
		}
		return res, &fetch.ProviderError{Provider: "github", Status: status, Body: string(body)}
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return res, fmt.Errorf("github decode: %w", err)
	}
	if len(data.Items) == 0 {
		res.Message = "no github signals found"
		return res, nil
	}

	repos := data.Items
	if len(repos) > c.cfg.AuthorLookupLimit {
		repos = repos[:c.cfg.AuthorLookupLimit]
	}

	now := c.now()
	out := make([]domain.SignalLead, 0, len(repos))
	for i, repo := range repos {
		author := repo.Owner
		if repo.Stars > c.cfg.AuthorMinStars || repo.Forks > c.cfg.AuthorMinForks {
			if detail, err := c.fetchAuthor(ctx, repo.Owner.Login); err == nil {
				author = detail
			}
			// author lookup failures keep the embedded owner snapshot
		}

		item := rank.RepoItem{
			Name:              repo.Name,
			Description:       repo.Description,
			Stars:             repo.Stars,
			Forks:             repo.Forks,
			UpdatedAt:         repo.UpdatedAt,
			AuthorFollowers:   author.Followers,
			AuthorPublicRepos: author.PublicRepos,
		}

		out = append(out, domain.SignalLead{
			Founder: founderSeed(repo, author),
			Signal: domain.Signal{
				ID:              domain.SignalID(domain.SourceGithub, fmt.Sprint(repo.ID)),
				FounderID:       domain.FounderID(domain.SourceGithub, repo.Owner.Login),
				Source:          domain.SourceGithub,
				Type:            rank.ClassifyRepo(repo.Name, repo.Description),
				Title:           "Active development on " + repo.Name,
				Description:     signalDescription(repo),
				URL:             repo.HTMLURL,
				Strength:        rank.ScoreRepo(item, now),
				EngagementCount: repo.Stars + repo.Forks,
				FollowersCount:  author.Followers,
				DetectedAt:      repo.UpdatedAt,
			},
		})

		// spread the per-author calls out a little
		if i < len(repos)-1 {
			if err := c.sleep(ctx, 100*time.Millisecond); err != nil {
				return res, err
			}
		}
	}

	res.Leads = out
	return res, nil
}

func (c *Client) fetchAuthor(ctx context.Context, login string) (ghUser, error) {
	body, status, err := c.get(ctx, c.cfg.BaseURL+"/users/"+url.PathEscape(login))
	if err != nil {
		return ghUser{}, err
	}
	if status != http.StatusOK {
		return ghUser{}, fmt.Errorf("github user status %d", status)
	}
	var u ghUser
	if err := json.Unmarshal(body, &u); err != nil {
		return ghUser{}, err
	}
	return u, nil
}

func (c *Client) get(ctx context.Context, rawurl string) ([]byte, int, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "SignalSource-VC-Tool/1.0")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, rawurl); err != nil {
			return nil, 0, err
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("github get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("github read: %w", err)
	}
	return body, resp.StatusCode, nil
}

func founderSeed(repo ghRepo, author ghUser) domain.FounderSeed {
	seed := domain.FounderSeed{
		Name:        author.Name,
		Username:    repo.Owner.Login,
		Location:    author.Location,
		Description: author.Bio,
		Company:     author.Company,
		Followers:   author.Followers,
	}
	if seed.Name == "" {
		seed.Name = repo.Owner.Login
	}
	if seed.Location == "" {
		seed.Location = "Unknown"
	}
	return seed
}

func signalDescription(repo ghRepo) string {
	if repo.Description != "" {
		return repo.Description
	}
	lang := repo.Language
	if lang == "" {
		lang = "software"
	}
	return fmt.Sprintf("%s is actively developing %s, a %s project with %d stars and %d forks.",
		repo.Owner.Login, repo.Name, lang, repo.Stars, repo.Forks)
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
