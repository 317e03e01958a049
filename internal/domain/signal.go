package domain

import (
	"fmt"
	"time"
)

type Source string

const (
	SourceTwitter  Source = "twitter"
	SourceGithub   Source = "github"
	SourceLinkedin Source = "linkedin" // modeled, no live fetcher
)

type SignalType string

const (
	TypeFunding     SignalType = "funding"
	TypeProduct     SignalType = "product"
	TypeTechnical   SignalType = "technical"
	TypeHiring      SignalType = "hiring"
	TypePartnership SignalType = "partnership"
	TypeRecognition SignalType = "recognition"
)

// Signal is one detected founder activity event. Immutable after ingestion;
// duplicate ingestion attempts are no-ops keyed on ID.
type Signal struct {
	ID              string // {source}_{providerItemID}
	FounderID       string // {source}_{username}
	Source          Source
	Type            SignalType
	Title           string
	Description     string
	URL             string
	Strength        int // 0..100, computed once at ingestion time
	EngagementCount int
	FollowersCount  int
	DetectedAt      time.Time // provider event time, not ingestion time
}

// FounderSeed is the author snapshot that rides along with a fetched signal.
type FounderSeed struct {
	Name        string
	Username    string
	Company     string
	Description string
	Location    string
	Followers   int
}

// SignalLead pairs a scored signal with its founder seed, the unit handed
// from the provider clients to the ingestion pipeline.
type SignalLead struct {
	Founder FounderSeed
	Signal  Signal
}

func SignalID(src Source, itemID string) string {
	return fmt.Sprintf("%s_%s", src, itemID)
}

func FounderID(src Source, username string) string {
	return fmt.Sprintf("%s_%s", src, username)
}

// Clamp pins a strength/score into [0,100]. Applied at every write.
func Clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
