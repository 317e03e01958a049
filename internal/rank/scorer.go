package rank

import (
	"time"

	"signalsource-engine/internal/domain"
)

// RepoItem is the provider-neutral view of one repository search hit plus
// its author snapshot. Scoring is pure and order-independent: every rule is
// an additive, non-negative term applied at most once.
type RepoItem struct {
	Name        string
	Description string
	Stars       int
	Forks       int
	UpdatedAt   time.Time

	AuthorFollowers   int
	AuthorPublicRepos int
}

// PostItem is one social post plus its author snapshot.
type PostItem struct {
	Text            string
	Likes           int
	Retweets        int
	Replies         int
	AuthorFollowers int
}

// ScoreRepo computes the 0..100 strength of a repository signal.
func ScoreRepo(it RepoItem, now time.Time) int {
	strength := 50 // base for repo-search items

	if it.Stars > 20 {
		strength += 15
	}
	if it.Stars > 100 {
		strength += 20
	}

	if it.Forks > 10 {
		strength += 10
	}
	if it.Forks > 50 {
		strength += 15
	}

	// recency tiers are mutually exclusive
	age := now.Sub(it.UpdatedAt)
	if age < 7*24*time.Hour {
		strength += 20
	} else if age < 30*24*time.Hour {
		strength += 10
	}

	if it.AuthorFollowers > 100 {
		strength += 15
	}
	if it.AuthorFollowers > 500 {
		strength += 15
	}

	if it.AuthorPublicRepos > 20 {
		strength += 10
	}

	return domain.Clamp(strength)
}

// ScorePost computes the 0..100 strength of a social-post signal. Posts get
// a higher base because the search query itself is already keyword-filtered.
func ScorePost(it PostItem) int {
	strength := 60

	eng := Engagement(it)
	if eng > 50 {
		strength += 15
	}
	if eng > 200 {
		strength += 15
	}

	if it.AuthorFollowers > 1000 {
		strength += 10
	}
	if it.AuthorFollowers > 10000 {
		strength += 10
	}

	if containsAny(it.Text, "funding", "raised", "seed") {
		strength += 20
	}
	if containsAny(it.Text, "launch", "mvp", "product hunt") {
		strength += 15
	}

	return domain.Clamp(strength)
}

func Engagement(it PostItem) int {
	return it.Likes + it.Retweets + it.Replies
}
