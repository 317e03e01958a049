package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Providers struct {
		Twitter struct {
			Enabled    bool   `yaml:"enabled"`
			Query      string `yaml:"query"`
			MaxResults int    `yaml:"max_results"`
		} `yaml:"twitter"`
		Github struct {
			Enabled           bool   `yaml:"enabled"`
			Query             string `yaml:"query"`
			PerPage           int    `yaml:"per_page"`
			AuthorLookupLimit int    `yaml:"author_lookup_limit"`
			AuthorMinStars    int    `yaml:"author_min_stars"`
			AuthorMinForks    int    `yaml:"author_min_forks"`
		} `yaml:"github"`
	} `yaml:"providers"`

	Ingest struct {
		MinStrength               int `yaml:"min_strength"`
		BackgroundCooldownSeconds int `yaml:"background_cooldown_seconds"`
		RefreshCooldownSeconds    int `yaml:"refresh_cooldown_seconds"`
		PollSeconds               int `yaml:"poll_seconds"`
	} `yaml:"ingest"`

	Limiter struct {
		BaseIntervalMs int `yaml:"base_interval_ms"`
		MaxBackoffMs   int `yaml:"max_backoff_ms"`
	} `yaml:"limiter"`

	Persist struct {
		BatchSize    int `yaml:"batch_size"`
		OpDelayMs    int `yaml:"op_delay_ms"`
		ItemDelayMs  int `yaml:"item_delay_ms"`
		BatchDelayMs int `yaml:"batch_delay_ms"`
	} `yaml:"persist"`

	Read struct {
		SignalsLimit  int `yaml:"signals_limit"`
		FoundersLimit int `yaml:"founders_limit"`
	} `yaml:"read"`

	Enrich struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"enrich"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults fills zero values so a sparse user config still behaves.
// The numbers mirror the provider quotas the pipeline was tuned against.
func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38573
	}
	if cfg.Providers.Twitter.Query == "" {
		cfg.Providers.Twitter.Query = `("raised funding" OR "seed round" OR "launched product") (India OR Bangalore OR Mumbai) -is:retweet lang:en`
	}
	if cfg.Providers.Twitter.MaxResults == 0 {
		cfg.Providers.Twitter.MaxResults = 20
	}
	if cfg.Providers.Github.Query == "" {
		cfg.Providers.Github.Query = "startup saas mvp created:>2024-01-01 stars:>10"
	}
	if cfg.Providers.Github.PerPage == 0 {
		cfg.Providers.Github.PerPage = 30
	}
	if cfg.Providers.Github.AuthorLookupLimit == 0 {
		cfg.Providers.Github.AuthorLookupLimit = 10
	}
	if cfg.Providers.Github.AuthorMinStars == 0 {
		cfg.Providers.Github.AuthorMinStars = 20
	}
	if cfg.Providers.Github.AuthorMinForks == 0 {
		cfg.Providers.Github.AuthorMinForks = 5
	}
	if cfg.Ingest.MinStrength == 0 {
		cfg.Ingest.MinStrength = 60
	}
	if cfg.Ingest.BackgroundCooldownSeconds == 0 {
		cfg.Ingest.BackgroundCooldownSeconds = 10 * 60
	}
	if cfg.Ingest.RefreshCooldownSeconds == 0 {
		cfg.Ingest.RefreshCooldownSeconds = 15 * 60
	}
	if cfg.Ingest.PollSeconds == 0 {
		cfg.Ingest.PollSeconds = 20 * 60
	}
	if cfg.Limiter.BaseIntervalMs == 0 {
		cfg.Limiter.BaseIntervalMs = 2000
	}
	if cfg.Limiter.MaxBackoffMs == 0 {
		cfg.Limiter.MaxBackoffMs = 60000
	}
	if cfg.Persist.BatchSize == 0 {
		cfg.Persist.BatchSize = 2
	}
	if cfg.Persist.OpDelayMs == 0 {
		cfg.Persist.OpDelayMs = 200
	}
	if cfg.Persist.ItemDelayMs == 0 {
		cfg.Persist.ItemDelayMs = 300
	}
	if cfg.Persist.BatchDelayMs == 0 {
		cfg.Persist.BatchDelayMs = 1000
	}
	if cfg.Read.SignalsLimit == 0 {
		cfg.Read.SignalsLimit = 50
	}
	if cfg.Read.FoundersLimit == 0 {
		cfg.Read.FoundersLimit = 20
	}
}
