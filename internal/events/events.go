package events

import (
	"encoding/json"
	"time"
)

// Event types pushed over the SSE stream. The dashboard refreshes its
// lists on data events and its status bar on ingest events.
const (
	TypeSignalsUpdated  = "signals.updated"
	TypeFoundersUpdated = "founders.updated"
	TypeStatsUpdated    = "stats.updated"
	TypeIngestStarted   = "ingest.started"
	TypeIngestFinished  = "ingest.finished"
	TypeConfigUpdated   = "config.updated"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
