package rank

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"signalsource-engine/internal/domain"
)

func TestScoreRepoClampsHighEndScenario(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// 150 stars, 60 forks, updated 2 days ago, author with 600 followers and
	// 25 repos: 50+15+20+10+15+20+15+15+10 = 170, clamped to 100.
	it := RepoItem{
		Name:              "saas-billing",
		Stars:             150,
		Forks:             60,
		UpdatedAt:         now.Add(-48 * time.Hour),
		AuthorFollowers:   600,
		AuthorPublicRepos: 25,
	}
	assert.Equal(t, 100, ScoreRepo(it, now))
}

func TestScoreRepoRecencyTiers(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	fresh := RepoItem{UpdatedAt: now.Add(-2 * 24 * time.Hour)}
	recent := RepoItem{UpdatedAt: now.Add(-14 * 24 * time.Hour)}
	stale := RepoItem{UpdatedAt: now.Add(-90 * 24 * time.Hour)}

	assert.Equal(t, 70, ScoreRepo(fresh, now))
	assert.Equal(t, 60, ScoreRepo(recent, now))
	assert.Equal(t, 50, ScoreRepo(stale, now))
}

func TestScorePostSeedRoundScenario(t *testing.T) {
	// "we just raised our seed round", 10 likes, 2 retweets, 50 followers:
	// 60 base + 20 keyword = 80.
	it := PostItem{
		Text:            "we just raised our seed round",
		Likes:           10,
		Retweets:        2,
		AuthorFollowers: 50,
	}
	assert.Equal(t, 80, ScorePost(it))
	assert.Equal(t, domain.TypeFunding, ClassifyPost(it.Text))
}

func TestScorePostEngagementAndReach(t *testing.T) {
	it := PostItem{
		Text:            "shipping updates",
		Likes:           150,
		Retweets:        40,
		Replies:         30, // engagement 220: both tiers apply
		AuthorFollowers: 15000,
	}
	// 60 + 15 + 15 + 10 + 10 = 110 -> 100
	assert.Equal(t, 100, ScorePost(it))
}

func TestScoreBounds(t *testing.T) {
	now := time.Now()
	for _, it := range []RepoItem{
		{},
		{Stars: 1000000, Forks: 1000000, UpdatedAt: now, AuthorFollowers: 1 << 30, AuthorPublicRepos: 1 << 30},
	} {
		s := ScoreRepo(it, now)
		if s < 0 || s > 100 {
			t.Fatalf("repo strength out of range: %d", s)
		}
	}
	for _, it := range []PostItem{
		{},
		{Text: "funding raised seed launch mvp product hunt", Likes: 1 << 30, AuthorFollowers: 1 << 30},
	} {
		s := ScorePost(it)
		if s < 0 || s > 100 {
			t.Fatalf("post strength out of range: %d", s)
		}
	}
}

func TestClassifyRepo(t *testing.T) {
	assert.Equal(t, domain.TypeProduct, ClassifyRepo("billing", "SaaS invoicing for startups"))
	assert.Equal(t, domain.TypeProduct, ClassifyRepo("demo", "an MVP prototype"))
	assert.Equal(t, domain.TypeTechnical, ClassifyRepo("payments-api", "fast and boring"))
	assert.Equal(t, domain.TypeTechnical, ClassifyRepo("dotfiles", ""))
}

func TestClassifyPost(t *testing.T) {
	assert.Equal(t, domain.TypeFunding, ClassifyPost("Raised our Series A!"))
	assert.Equal(t, domain.TypeProduct, ClassifyPost("our MVP is live"))
	assert.Equal(t, domain.TypeHiring, ClassifyPost("hiring our first engineer"))
	assert.Equal(t, domain.TypeRecognition, ClassifyPost("made the Forbes list"))
}

func TestClassifyPostPriorityOrder(t *testing.T) {
	// funding wins over launch when both match
	assert.Equal(t, domain.TypeFunding, ClassifyPost("raised a round to fund our launch"))
}
