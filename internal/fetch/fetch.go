package fetch

import (
	"context"
	"fmt"

	"signalsource-engine/internal/domain"
)

// Result is one provider's output for a single ingestion pass. A degraded
// pass (throttled or malformed query) is still a successful Result with
// zero leads and the matching flag set; only genuinely unexpected provider
// responses surface as errors.
type Result struct {
	Source      domain.Source
	Leads       []domain.SignalLead
	RateLimited bool
	QueryError  bool
	Message     string
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

// ProviderError is a non-2xx provider response outside the locally recovered
// cases (422/429).
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s api error: %d %s", e.Provider, e.Status, e.Body)
}

func (e *ProviderError) RateLimited() bool { return e.Status == 429 }
