package httpapi

import (
	"database/sql"
	"sync/atomic"

	"signalsource-engine/internal/config"
	"signalsource-engine/internal/events"
	"signalsource-engine/internal/ingest"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Runner *ingest.Runner

	UserID string

	// Atomic config store, shared with the poller
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
