// Package http assembles the route table for the tracker API.
package http

import (
	nethttp "net/http"

	"github.com/gorilla/mux"

	"pool-tracker-service/internal/http/handlers"
	"pool-tracker-service/internal/http/ws"
)

// NewRouter registers HTTP routes on a gorilla/mux router. hub may be nil
// when live events are disabled.
func NewRouter(handler *handlers.Handler, hub *ws.Hub) nethttp.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.Health).Methods(nethttp.MethodGet)
	r.HandleFunc("/ready", handler.Ready).Methods(nethttp.MethodGet)

	r.HandleFunc("/matches", handler.ListMatches).Methods(nethttp.MethodGet)
	r.HandleFunc("/matches", handler.CreateMatch).Methods(nethttp.MethodPost)
	r.HandleFunc("/matches", handler.ClearMatches).Methods(nethttp.MethodDelete)
	r.HandleFunc("/matches/{id}", handler.GetMatch).Methods(nethttp.MethodGet)
	r.HandleFunc("/matches/{id}", handler.DeleteMatch).Methods(nethttp.MethodDelete)

	r.HandleFunc("/seasons", handler.ListSeasons).Methods(nethttp.MethodGet)
	r.HandleFunc("/seasons", handler.CreateSeason).Methods(nethttp.MethodPost)
	r.HandleFunc("/seasons", handler.ClearSeasons).Methods(nethttp.MethodDelete)
	r.HandleFunc("/seasons/{id}", handler.GetSeason).Methods(nethttp.MethodGet)
	r.HandleFunc("/seasons/{id}", handler.DeleteSeason).Methods(nethttp.MethodDelete)
	r.HandleFunc("/seasons/{id}/matches", handler.AddMatchToSeason).Methods(nethttp.MethodPost)
	r.HandleFunc("/seasons/{id}/end", handler.EndSeason).Methods(nethttp.MethodPost)
	r.HandleFunc("/seasons/{id}/standings", handler.SeasonStandings).Methods(nethttp.MethodGet)

	r.HandleFunc("/sessions", handler.StartSession).Methods(nethttp.MethodPost)
	r.HandleFunc("/sessions/{id}", handler.GetSession).Methods(nethttp.MethodGet)
	r.HandleFunc("/sessions/{id}/score", handler.AdjustScore).Methods(nethttp.MethodPost)
	r.HandleFunc("/sessions/{id}/break-run", handler.RecordBreakRun).Methods(nethttp.MethodPost)
	r.HandleFunc("/sessions/{id}/games", handler.FinishGame).Methods(nethttp.MethodPost)
	r.HandleFunc("/sessions/{id}/break-rule", handler.ToggleBreakRule).Methods(nethttp.MethodPost)
	r.HandleFunc("/sessions/{id}/finalize", handler.FinalizeSession).Methods(nethttp.MethodPost)

	r.HandleFunc("/users", handler.ListUsers).Methods(nethttp.MethodGet)
	r.HandleFunc("/users", handler.RegisterUser).Methods(nethttp.MethodPost)
	r.HandleFunc("/login", handler.Login).Methods(nethttp.MethodPost)

	r.HandleFunc("/players/{id}/stats", handler.PlayerStats).Methods(nethttp.MethodGet)

	r.HandleFunc("/migrate", handler.Migrate).Methods(nethttp.MethodPost)

	if hub != nil {
		r.HandleFunc("/events", hub.ServeWS).Methods(nethttp.MethodGet)
	}

	return r
}
