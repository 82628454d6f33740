package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blazeboard/internal/api/handler"
	"github.com/mcoot/blazeboard/internal/api/middleware"
	"github.com/mcoot/blazeboard/internal/api/response"
	"github.com/mcoot/blazeboard/internal/metrics"
	basemiddleware "github.com/mcoot/blazeboard/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	MatchStore handler.MatchStore

	// Metrics is optional; when set its registry is served at MetricsPath
	Metrics     *metrics.Recorder
	MetricsPath string

	// CORSOrigin defaults to "*"
	CORSOrigin string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	matchHandler := handler.NewMatchHandler(cfg.MatchStore)

	// Common middleware, outermost first
	r.Use(basemiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(basemiddleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	api := r.PathPrefix("/api").Subrouter()

	// Registration
	api.HandleFunc("/register", matchHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/register_external", matchHandler.RegisterExternal).Methods(http.MethodPost)
	api.HandleFunc("/registry", matchHandler.Registry).Methods(http.MethodGet)
	api.HandleFunc("/registered_candidates", matchHandler.Candidates).Methods(http.MethodGet)

	// Scoring
	api.HandleFunc("/kill", matchHandler.Kill).Methods(http.MethodPost)
	api.HandleFunc("/death", matchHandler.Death).Methods(http.MethodPost)
	api.HandleFunc("/players", matchHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", matchHandler.Player).Methods(http.MethodGet)

	// Lifecycle
	api.HandleFunc("/end_match", matchHandler.EndMatch).Methods(http.MethodPost)
	api.HandleFunc("/match_status", matchHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/victory_data", matchHandler.Victory).Methods(http.MethodGet)
	api.HandleFunc("/reset", matchHandler.Reset).Methods(http.MethodPost)

	// Roster administration
	api.HandleFunc("/clear_team", matchHandler.ClearTeam).Methods(http.MethodPost)
	api.HandleFunc("/remove_player", matchHandler.RemovePlayer).Methods(http.MethodPost)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return basemiddleware.CORS(cfg.CORSOrigin)(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
