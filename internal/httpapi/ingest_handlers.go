package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"signalsource-engine/internal/config"
	"signalsource-engine/internal/ingest"
)

type IngestHandler struct {
	Runner *ingest.Runner
	CfgVal *atomic.Value // config.Config
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run kicks off a pass in the background and returns 202 immediately. A
// plain POST honors the refresh cooldown; ?force=1 is the dashboard's
// refresh button and always runs. A pass already in flight is a 409.
func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Runner.Status().Running {
		WriteError(w, r, http.StatusConflict, "ingest_running", "an ingestion pass is already running")
		return
	}

	cooldown := h.cooldown()
	if r.URL.Query().Get("force") == "1" {
		cooldown = 0
	}

	go func() {
		_, err := h.Runner.RunOnce(context.Background(), cooldown)
		if err != nil && !errors.Is(err, ingest.ErrPassInProgress) && !errors.Is(err, ingest.ErrCooldown) {
			log.Printf("[ingest] manual run failed: %v", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{"ok": true})
}

func (h IngestHandler) cooldown() time.Duration {
	cfg := h.CfgVal.Load().(config.Config)
	return time.Duration(cfg.Ingest.RefreshCooldownSeconds) * time.Second
}

type liveReq struct {
	Live bool `json:"live"`
}

// Live toggles the background polling loop.
func (h IngestHandler) Live(w http.ResponseWriter, r *http.Request) {
	var req liveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	h.Runner.SetLive(req.Live)
	writeJSON(w, map[string]any{"live": h.Runner.Live()})
}
