package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/stats"
	"pool-tracker-service/internal/sync"
)

type seasonResponse struct {
	domain.Season
	SyncStatus sync.RecordState `json:"syncStatus"`
}

func (h *Handler) seasonResponse(s domain.Season) seasonResponse {
	return seasonResponse{Season: s, SyncStatus: h.svc.SeasonStatus(s.ID)}
}

// ListSeasons returns all seasons, newest first.
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons := h.svc.Seasons()
	out := make([]seasonResponse, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, h.seasonResponse(s))
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}

// GetSeason returns a single season by id.
func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, ok := h.svc.SeasonByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "season not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.seasonResponse(s), h.logger)
}

// CreateSeason opens a new season.
func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var s domain.Season
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	saved, err := h.svc.AddSeason(r.Context(), s)
	if err != nil {
		var perr *sync.PersistenceError
		if !errors.As(err, &perr) {
			h.writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, h.seasonResponse(saved), h.logger)
}

// AddMatchToSeason appends an existing match to a season's member list.
func (h *Handler) AddMatchToSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := mux.Vars(r)["id"]
	var body struct {
		MatchID string `json:"matchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MatchID == "" {
		writeError(w, r, http.StatusBadRequest, "matchId required", h.logger)
		return
	}
	if _, ok := h.svc.MatchByID(body.MatchID); !ok {
		writeError(w, r, http.StatusNotFound, "match not found", h.logger)
		return
	}

	if err := h.svc.UpdateSeasonWithMatch(r.Context(), seasonID, body.MatchID); err != nil {
		var perr *sync.PersistenceError
		if !errors.As(err, &perr) {
			h.writeServiceError(w, r, err)
			return
		}
	}
	s, _ := h.svc.SeasonByID(seasonID)
	writeJSON(w, http.StatusOK, h.seasonResponse(s), h.logger)
}

// EndSeason closes a season with an optional winner.
func (h *Handler) EndSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := mux.Vars(r)["id"]
	var body struct {
		Winner string `json:"winner"`
	}
	if r.Body != nil {
		// Winner is optional; a bare close is allowed.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if err := h.svc.EndSeason(r.Context(), seasonID, body.Winner); err != nil {
		var perr *sync.PersistenceError
		if !errors.As(err, &perr) {
			h.writeServiceError(w, r, err)
			return
		}
	}
	s, _ := h.svc.SeasonByID(seasonID)
	writeJSON(w, http.StatusOK, h.seasonResponse(s), h.logger)
}

// SeasonStandings returns the season table derived from member matches.
func (h *Handler) SeasonStandings(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, ok := h.svc.SeasonByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "season not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats.SeasonStandings(s, h.svc.Matches()), h.logger)
}

// DeleteSeason removes a season where the backend allows it.
func (h *Handler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteSeason(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id}, h.logger)
}

// ClearSeasons empties the season collection where the backend allows it.
func (h *Handler) ClearSeasons(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearSeasons(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"}, h.logger)
}
