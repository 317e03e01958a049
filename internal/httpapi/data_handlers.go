package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"signalsource-engine/internal/config"
	"signalsource-engine/internal/store"
	"signalsource-engine/internal/view"
)

type DataHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // config.Config
	UserID string
}

func (h DataHandler) cfg() config.Config {
	return h.CfgVal.Load().(config.Config)
}

func limitParam(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (h DataHandler) Signals(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, h.cfg().Read.SignalsLimit)

	signals, err := store.ListSignals(r.Context(), h.DB, h.UserID, limit)
	if err != nil {
		WriteError(w, r, 500, "db_error", err.Error())
		return
	}
	founders, err := store.ListFounders(r.Context(), h.DB, h.UserID, h.cfg().Read.FoundersLimit)
	if err != nil {
		WriteError(w, r, 500, "db_error", err.Error())
		return
	}

	writeJSON(w, view.Signals(signals, founders, time.Now()))
}

func (h DataHandler) Founders(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, h.cfg().Read.FoundersLimit)

	founders, err := store.ListFounders(r.Context(), h.DB, h.UserID, limit)
	if err != nil {
		WriteError(w, r, 500, "db_error", err.Error())
		return
	}
	writeJSON(w, view.Founders(founders))
}

func (h DataHandler) Stats(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg()

	signals, err := store.ListSignals(r.Context(), h.DB, h.UserID, cfg.Read.SignalsLimit)
	if err != nil {
		WriteError(w, r, 500, "db_error", err.Error())
		return
	}
	founders, err := store.ListFounders(r.Context(), h.DB, h.UserID, cfg.Read.FoundersLimit)
	if err != nil {
		WriteError(w, r, 500, "db_error", err.Error())
		return
	}

	writeJSON(w, map[string]any{
		"stats":   view.BuildStats(signals, founders),
		"sources": view.BuildSourceStats(signals),
	})
}
