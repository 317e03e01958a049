package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a user
// should fix before the config is saved.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Providers.Twitter.Query = strings.TrimSpace(out.Providers.Twitter.Query)
	out.Providers.Github.Query = strings.TrimSpace(out.Providers.Github.Query)
	applyDefaults(&out)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if !out.Providers.Twitter.Enabled && !out.Providers.Github.Enabled {
		res.addWarn("no providers enabled; every pass will fall back to the demo dataset")
	}
	if out.Providers.Twitter.MaxResults < 10 || out.Providers.Twitter.MaxResults > 100 {
		res.addErr("providers.twitter.max_results must be 10..100")
	}
	if out.Providers.Github.PerPage < 1 || out.Providers.Github.PerPage > 100 {
		res.addErr("providers.github.per_page must be 1..100")
	}
	if out.Providers.Github.AuthorLookupLimit > out.Providers.Github.PerPage {
		res.addWarn("providers.github.author_lookup_limit exceeds per_page; it will be capped at the page size")
	}

	if out.Ingest.MinStrength < 0 || out.Ingest.MinStrength > 100 {
		res.addErr("ingest.min_strength must be 0..100")
	}
	if out.Ingest.PollSeconds < 60 {
		res.addWarn("ingest.poll_seconds is very low (%d); provider quotas are tight", out.Ingest.PollSeconds)
	}
	if out.Ingest.RefreshCooldownSeconds > out.Ingest.PollSeconds {
		res.addWarn("ingest.refresh_cooldown_seconds exceeds poll_seconds; timer passes will usually be skipped")
	}

	if out.Limiter.BaseIntervalMs <= 0 {
		res.addErr("limiter.base_interval_ms must be > 0")
	}
	if out.Limiter.MaxBackoffMs < out.Limiter.BaseIntervalMs {
		res.addErr("limiter.max_backoff_ms must be >= limiter.base_interval_ms")
	}

	if out.Persist.BatchSize <= 0 {
		res.addErr("persist.batch_size must be > 0")
	}

	if out.Read.SignalsLimit <= 0 || out.Read.FoundersLimit <= 0 {
		res.addErr("read limits must be > 0")
	}

	return out, res
}
