package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Read model
	dh := DataHandler{DB: d.DB, CfgVal: d.CfgVal, UserID: d.UserID}
	mux.HandleFunc("/signals", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Signals,
	}))
	mux.HandleFunc("/founders", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Founders,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Stats,
	}))

	// Ingestion control
	ih := IngestHandler{Runner: d.Runner, CfgVal: d.CfgVal}
	mux.HandleFunc("/ingest/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Run,
	}))
	mux.HandleFunc("/ingest/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))
	mux.HandleFunc("/live", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Live,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Provider credentials (OS keychain)
	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets/twitter", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetTwitterToken,
		http.MethodDelete: sh.DeleteTwitterToken,
	}))
	mux.HandleFunc("/api/secrets/github", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetGithubToken,
		http.MethodDelete: sh.DeleteGithubToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Maintenance
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	return mux
}
