package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"signalsource-engine/internal/domain"
)

const searchBody = `{
  "total_count": 2,
  "items": [
    {
      "id": 42,
      "name": "saas-billing",
      "full_name": "meera-dev/saas-billing",
      "description": "SaaS billing for startups",
      "updated_at": "2026-08-28T12:00:00Z",
      "stargazers_count": 150,
      "forks_count": 60,
      "language": "Go",
      "html_url": "https://github.com/meera-dev/saas-billing",
      "owner": {"login": "meera-dev", "followers": 10, "public_repos": 3}
    },
    {
      "id": 43,
      "name": "dotfiles",
      "full_name": "quietdev/dotfiles",
      "description": "",
      "updated_at": "2026-01-01T00:00:00Z",
      "stargazers_count": 12,
      "forks_count": 1,
      "language": "",
      "html_url": "https://github.com/quietdev/dotfiles",
      "owner": {"login": "quietdev", "followers": 2, "public_repos": 1}
    }
  ]
}`

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New("test-token", Config{Query: "startup", BaseURL: baseURL}, nil)
	assert.Equal(t, nil, err)
	c.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New("", Config{}, nil)
	assert.NotEqual(t, nil, err)
}

func TestFetchScoresAndGatesAuthorLookups(t *testing.T) {
	var userLookups []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/search/repositories":
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			assert.Equal(t, "30", r.URL.Query().Get("per_page"))
			w.Write([]byte(searchBody))
		case "/users/meera-dev":
			userLookups = append(userLookups, "meera-dev")
			w.Write([]byte(`{"login":"meera-dev","name":"Meera Iyer","location":"Chennai, India","bio":"payments founder","company":"BillStack","followers":600,"public_repos":25}`))
		default:
			// the low-star repo must not trigger a lookup
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"meera-dev"}, userLookups)
	assert.Equal(t, 2, len(res.Leads))

	hot := res.Leads[0]
	assert.Equal(t, "github_42", hot.Signal.ID)
	assert.Equal(t, "github_meera-dev", hot.Signal.FounderID)
	assert.Equal(t, domain.TypeProduct, hot.Signal.Type)
	// 50+15+20 stars +10+15 forks +20 recency +15+15 followers +10 repos = 170 -> 100
	assert.Equal(t, 100, hot.Signal.Strength)
	assert.Equal(t, 210, hot.Signal.EngagementCount)
	assert.Equal(t, "Meera Iyer", hot.Founder.Name)
	assert.Equal(t, "BillStack", hot.Founder.Company)
	assert.Equal(t, 600, hot.Founder.Followers)

	cold := res.Leads[1]
	assert.Equal(t, "quietdev", cold.Founder.Name) // no name, falls back to login
	assert.Equal(t, "Unknown", cold.Founder.Location)
	assert.Equal(t, domain.TypeTechnical, cold.Signal.Type)
	// 50 base, stale repo, tiny author reach
	assert.Equal(t, 50, cold.Signal.Strength)
	// synthesized description when the repo has none
	assert.Equal(t, "quietdev is actively developing dotfiles, a software project with 12 stars and 1 forks.", cold.Signal.Description)
}

func TestFetchAuthorLookupFailureKeepsOwnerSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/repositories":
			w.Write([]byte(searchBody))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(res.Leads))
	// embedded owner snapshot survives the failed detail call
	assert.Equal(t, 10, res.Leads[0].Founder.Followers)
}

func TestFetchRateLimitedDegradesToEmpty(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", status)
		}))

		c := newTestClient(t, srv.URL)
		res, err := c.Fetch(context.Background())
		srv.Close()

		assert.Equal(t, nil, err)
		assert.Equal(t, true, res.RateLimited)
		assert.Equal(t, 0, len(res.Leads))
	}
}

func TestFetchQueryErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many operators", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, res.QueryError)
	assert.Equal(t, 0, len(res.Leads))
}

func TestFetchLookupLimitCapsProcessedRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/search/repositories" {
			w.Write([]byte(searchBody))
			return
		}
		w.Write([]byte(`{"login":"meera-dev"}`))
	}))
	defer srv.Close()

	c, err := New("test-token", Config{Query: "startup", BaseURL: srv.URL, AuthorLookupLimit: 1}, nil)
	assert.Equal(t, nil, err)
	c.sleep = func(context.Context, time.Duration) error { return nil }

	res, err := c.Fetch(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Leads))
}
