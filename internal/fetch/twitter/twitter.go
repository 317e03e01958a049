package twitter

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

const defaultBaseURL = "https://api.twitter.com"

type Config struct {
	Query      string
	MaxResults int
	BaseURL    string // tests override this
}

// Client issues one recent-search call per pass against the social provider.
type Client struct {
	token   string
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

// New fails fast on a missing credential: a token-less client must never get
// as far as the network.
func New(token string, cfg Config, limiter *util.HostLimiter) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("twitter: bearer token not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 20
	}
	return &Client{
		token:   token,
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}, nil
}

func (c *Client) Name() string { return "twitter" }

type tweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

type tweetUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
		FollowingCount int `json:"following_count"`
		TweetCount     int `json:"tweet_count"`
	} `json:"public_metrics"`
}

type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []tweetUser `json:"users"`
	} `json:"includes"`
}

func (c *Client) Fetch(ctx context.Context) (fetch.Result, error) {
	res := fetch.Result{Source: domain.SourceTwitter}

	u, err := url.Parse(c.cfg.BaseURL + "/2/tweets/search/recent")
	if err != nil {
		return res, fmt.Errorf("twitter url: %w", err)
	}
	q := u.Query()
	q.Set("query", c.cfg.Query)
	q.Set("tweet.fields", "author_id,created_at,public_metrics")
	q.Set("user.fields", "name,username,location,public_metrics,description")
	q.Set("expansions", "author_id")
	q.Set("max_results", fmt.Sprint(c.cfg.MaxResults))
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "SignalSource-VC-Tool/1.0")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, u.String()); err != nil {
			return res, err
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return res, fmt.Errorf("twitter get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			// degrade to empty; the orchestrator has a fallback dataset
			res.RateLimited = true
			res.Message = "twitter rate limit reached, try again later"
			return res, nil
		case http.StatusUnprocessableEntity:
			res.QueryError = true
			res.Message = "twitter search query needs refinement"
			return res, nil
		}
		return res, &fetch.ProviderError{Provider: "twitter", Status: resp.StatusCode, Body: string(body)}
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return res, fmt.Errorf("twitter decode: %w", err)
	}

	if len(data.Data) == 0 {
		res.Message = "no twitter signals found"
		return res, nil
	}

	authors := make(map[string]tweetUser, len(data.Includes.Users))
	for _, u := range data.Includes.Users {
		authors[u.ID] = u
	}

	out := make([]domain.SignalLead, 0, len(data.Data))
	for _, tw := range data.Data {
		author, hasAuthor := authors[tw.AuthorID]

		item := rank.PostItem{
			Text:            tw.Text,
			Likes:           tw.PublicMetrics.LikeCount,
			Retweets:        tw.PublicMetrics.RetweetCount,
			Replies:         tw.PublicMetrics.ReplyCount,
			AuthorFollowers: author.PublicMetrics.FollowersCount,
		}

		seed := domain.FounderSeed{
			Name:      "Unknown",
			Location:  "Unknown",
			Followers: author.PublicMetrics.FollowersCount,
		}
		if hasAuthor {
			seed.Name = author.Name
			seed.Username = author.Username
			seed.Description = author.Description
			if author.Location != "" {
				seed.Location = author.Location
			}
		}

		out = append(out, domain.SignalLead{
			Founder: seed,
			Signal: domain.Signal{
				ID:              domain.SignalID(domain.SourceTwitter, tw.ID),
				FounderID:       domain.FounderID(domain.SourceTwitter, seed.Username),
				Source:          domain.SourceTwitter,
				Type:            rank.ClassifyPost(tw.Text),
				Title:           truncate(tw.Text, 100),
				Description:     tw.Text,
				URL:             fmt.Sprintf("https://twitter.com/%s/status/%s", seed.Username, tw.ID),
				Strength:        rank.ScorePost(item),
				EngagementCount: rank.Engagement(item),
				FollowersCount:  seed.Followers,
				DetectedAt:      tw.CreatedAt,
			},
		})
	}

	res.Leads = out
	return res, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
