package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"signalsource-engine/internal/config"
	"signalsource-engine/internal/enrich"
	"signalsource-engine/internal/events"
	"signalsource-engine/internal/fetch"
	"signalsource-engine/internal/fetch/github"
	"signalsource-engine/internal/fetch/twitter"
	"signalsource-engine/internal/fetch/util"
	"signalsource-engine/internal/httpapi"
	"signalsource-engine/internal/ingest"
	"signalsource-engine/internal/limiter"
	"signalsource-engine/internal/secrets"
	"signalsource-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("SIGNALSOURCE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running for %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)
	currentCfg := func() config.Config { return cfgVal.Load().(config.Config) }

	dbPath := filepath.Join(dataDir, "signalsource.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	userID := os.Getenv("SIGNALSOURCE_USER_ID")
	if userID == "" {
		userID = "local"
	}

	hub := events.NewHub()
	gate := limiter.NewGate(
		time.Duration(cfg.Limiter.BaseIntervalMs)*time.Millisecond,
		time.Duration(cfg.Limiter.MaxBackoffMs)*time.Millisecond,
	)

	runner := ingest.NewRunner(db.Pool, currentCfg, gate, buildFetchers(cfg), hub, userID)
	if cfg.Enrich.Enabled {
		runner.Enricher = enrich.New(db.Pool)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.StartPoller(ctx)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Runner:      runner,
		UserID:      userID,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	shutdownToken, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s user=%s)", addr, dbPath, userID)

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Cors, httpapi.Recover, httpapi.AccessLog),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, srv))
	log.Printf("shutdown token: %s", shutdownToken)

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildFetchers constructs a client per enabled provider whose credential is
// available; a missing token just drops that provider with a log line.
func buildFetchers(cfg config.Config) []fetch.Fetcher {
	var out []fetch.Fetcher

	// one limiter shared across providers, keyed by host inside
	hl := util.NewHostLimiter(1, 2)

	if cfg.Providers.Twitter.Enabled {
		token, err := secrets.TwitterBearerToken()
		if err != nil {
			log.Printf("[main] twitter disabled: %v", err)
		} else {
			c, err := twitter.New(token, twitter.Config{
				Query:      cfg.Providers.Twitter.Query,
				MaxResults: cfg.Providers.Twitter.MaxResults,
			}, hl)
			if err != nil {
				log.Printf("[main] twitter client: %v", err)
			} else {
				out = append(out, c)
			}
		}
	}

	if cfg.Providers.Github.Enabled {
		token, err := secrets.GithubToken()
		if err != nil {
			log.Printf("[main] github disabled: %v", err)
		} else {
			c, err := github.New(token, github.Config{
				Query:             cfg.Providers.Github.Query,
				PerPage:           cfg.Providers.Github.PerPage,
				AuthorLookupLimit: cfg.Providers.Github.AuthorLookupLimit,
				AuthorMinStars:    cfg.Providers.Github.AuthorMinStars,
				AuthorMinForks:    cfg.Providers.Github.AuthorMinForks,
			}, hl)
			if err != nil {
				log.Printf("[main] github client: %v", err)
			} else {
				out = append(out, c)
			}
		}
	}

	if len(out) == 0 {
		log.Printf("[main] no providers configured, passes will serve the demo dataset")
	}
	return out
}
