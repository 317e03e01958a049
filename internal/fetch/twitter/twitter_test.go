package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"signalsource-engine/internal/domain"
	"signalsource-engine/internal/fetch"
)

func TestNewRequiresToken(t *testing.T) {
	_, err := New("", Config{}, nil)
	assert.NotEqual(t, nil, err)

	_, err = New("   ", Config{}, nil)
	assert.NotEqual(t, nil, err)
}

func TestFetchHappyPath(t *testing.T) {
	payload := map[string]any{
		"data": []map[string]any{
			{
				"id":         "1001",
				"text":       "we just raised our seed round",
				"author_id":  "u1",
				"created_at": "2026-08-30T09:00:00Z",
				"public_metrics": map[string]any{
					"retweet_count": 2,
					"like_count":    10,
					"reply_count":   0,
				},
			},
		},
		"includes": map[string]any{
			"users": []map[string]any{
				{
					"id":          "u1",
					"name":        "Asha Rao",
					"username":    "asha_builds",
					"location":    "Bangalore, India",
					"description": "fintech founder",
					"public_metrics": map[string]any{
						"followers_count": 50,
					},
				},
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "20", r.URL.Query().Get("max_results"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c, err := New("test-token", Config{Query: "startup", BaseURL: srv.URL}, nil)
	assert.Equal(t, nil, err)

	res, err := c.Fetch(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Leads))
	assert.Equal(t, false, res.RateLimited)

	lead := res.Leads[0]
	assert.Equal(t, "twitter_1001", lead.Signal.ID)
	assert.Equal(t, "twitter_asha_builds", lead.Signal.FounderID)
	assert.Equal(t, domain.TypeFunding, lead.Signal.Type)
	assert.Equal(t, 80, lead.Signal.Strength) // 60 base + 20 funding keywords
	assert.Equal(t, 12, lead.Signal.EngagementCount)
	assert.Equal(t, "https://twitter.com/asha_builds/status/1001", lead.Signal.URL)
	assert.Equal(t, "Asha Rao", lead.Founder.Name)
	assert.Equal(t, 50, lead.Founder.Followers)
}

func TestFetchRateLimitedDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := New("test-token", Config{BaseURL: srv.URL}, nil)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, res.RateLimited)
	assert.Equal(t, 0, len(res.Leads))
}

func TestFetchQueryErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "query too complex", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, _ := New("test-token", Config{BaseURL: srv.URL}, nil)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, res.QueryError)
	assert.Equal(t, 0, len(res.Leads))
}

func TestFetchFatalStatusIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New("test-token", Config{BaseURL: srv.URL}, nil)
	_, err := c.Fetch(context.Background())

	var perr *fetch.ProviderError
	assert.Equal(t, true, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, "twitter", perr.Provider)
}

func TestFetchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c, _ := New("test-token", Config{BaseURL: srv.URL}, nil)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(res.Leads))
	assert.NotEqual(t, "", res.Message)
}

func TestFetchUnknownAuthor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": "7", "text": "hello", "author_id": "missing"}]}`))
	}))
	defer srv.Close()

	c, _ := New("test-token", Config{BaseURL: srv.URL}, nil)
	res, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Leads))
	assert.Equal(t, "Unknown", res.Leads[0].Founder.Name)
	assert.Equal(t, "twitter_", res.Leads[0].Signal.FounderID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))

	long := make([]rune, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, 'x')
	}
	got := truncate(string(long), 100)
	assert.Equal(t, 103, len([]rune(got)))
	assert.Equal(t, "...", got[len(got)-3:])
}
