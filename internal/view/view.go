// Package view reshapes store rows into the payloads the dashboard renders:
// founder fields joined onto signals, relative timestamps, compact follower
// counts and the aggregate stat cards.
package view

import (
	"fmt"
	"math/rand"
	"time"

	"signalsource-engine/internal/store"
)

type Signal struct {
	ID          string `json:"id"`
	Founder     string `json:"founder"`
	Company     string `json:"company"`
	Signal      string `json:"signal"`
	Source      string `json:"source"`
	Strength    int    `json:"strength"`
	Location    string `json:"location"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Engagement  int    `json:"engagement"`
	Followers   string `json:"followers"`
	IsNew       bool   `json:"isNew"`
	URL         string `json:"url,omitempty"`
}

type Founder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Score       int    `json:"score"`
	Signals     int    `json:"signals"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Domain      string `json:"domain,omitempty"`
}

type Stats struct {
	ActiveSignals  int    `json:"activeSignals"`
	NewFounders    int    `json:"newFounders"`
	HighPriority   int    `json:"highPriority"`
	ConversionRate string `json:"conversionRate"`
}

type SourceStat struct {
	Count   int `json:"count"`
	Quality int `json:"quality"`
}

type SourceStats struct {
	Twitter  SourceStat `json:"twitter"`
	LinkedIn SourceStat `json:"linkedin"`
	Github   SourceStat `json:"github"`
}

// Signals joins founder rows onto signal rows by founder_id. Missing
// founders degrade to "Unknown" placeholders rather than dropping the row.
func Signals(signals []store.SignalRow, founders []store.FounderRow, now time.Time) []Signal {
	byID := make(map[string]store.FounderRow, len(founders))
	for _, f := range founders {
		byID[f.ID] = f
	}

	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		f, ok := byID[s.FounderID]

		v := Signal{
			ID:          s.ID,
			Founder:     "Unknown",
			Company:     "Unknown Company",
			Signal:      s.Title,
			Source:      s.Source,
			Strength:    s.Strength,
			Location:    "Unknown",
			Time:        TimeAgo(s.CreatedAt, now),
			Description: s.Description,
			Category:    s.SignalType,
			Engagement:  s.EngagementCount,
			Followers:   FormatFollowers(s.FollowersCount),
			IsNew:       IsNew(s.CreatedAt, now),
			URL:         s.URL,
		}
		if ok {
			v.Founder = f.Name
			v.Company = f.Company
			v.Location = f.Location
			if v.Description == "" {
				v.Description = f.Description
			}
		}
		out = append(out, v)
	}
	return out
}

func Founders(rows []store.FounderRow) []Founder {
	out := make([]Founder, 0, len(rows))
	for _, f := range rows {
		out = append(out, Founder{
			ID:          f.ID,
			Name:        f.Name,
			Company:     f.Company,
			Score:       f.Score,
			Signals:     f.SignalsCount,
			Location:    f.Location,
			Description: f.Description,
			Domain:      f.CompanyDomain,
		})
	}
	return out
}

// BuildStats mirrors the dashboard's stat cards. The conversion rate is a
// placeholder until deal outcomes are tracked.
func BuildStats(signals []store.SignalRow, founders []store.FounderRow) Stats {
	high := 0
	for _, s := range signals {
		if s.Strength >= 90 {
			high++
		}
	}
	return Stats{
		ActiveSignals:  len(signals),
		NewFounders:    len(founders),
		HighPriority:   high,
		ConversionRate: "4.2%",
	}
}

// BuildSourceStats counts signals per source. Quality is a jittered
// per-source baseline, not a measured figure.
func BuildSourceStats(signals []store.SignalRow) SourceStats {
	var tw, li, gh int
	for _, s := range signals {
		switch s.Source {
		case "twitter":
			tw++
		case "linkedin":
			li++
		case "github":
			gh++
		}
	}
	return SourceStats{
		Twitter:  SourceStat{Count: tw, Quality: 78 + rand.Intn(10)},
		LinkedIn: SourceStat{Count: li, Quality: 82 + rand.Intn(10)},
		Github:   SourceStat{Count: gh, Quality: 88 + rand.Intn(10)},
	}
}

// TimeAgo renders an RFC3339 timestamp relative to now: "Just now" under a
// minute, then minutes, hours, days.
func TimeAgo(rfc3339 string, now time.Time) string {
	ts, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return "Unknown"
	}

	mins := int(now.Sub(ts).Minutes())
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case mins < 1440:
		return plural(mins/60, "hour")
	default:
		return plural(mins/1440, "day")
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// FormatFollowers compacts large counts: 1234 -> "1.2K", 3400000 -> "3.4M".
func FormatFollowers(n int) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// IsNew reports whether the signal landed within the last 30 minutes.
func IsNew(rfc3339 string, now time.Time) bool {
	ts, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return false
	}
	return now.Sub(ts) < 30*time.Minute
}
