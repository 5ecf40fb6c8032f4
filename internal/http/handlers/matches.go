package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/sync"
	"pool-tracker-service/internal/timeutil"
)

// matchResponse pairs a match with its persistence status so clients can show
// unconfirmed writes.
type matchResponse struct {
	domain.Match
	SyncStatus sync.RecordState `json:"syncStatus"`
}

func (h *Handler) matchResponse(m domain.Match) matchResponse {
	return matchResponse{Match: m, SyncStatus: h.svc.MatchStatus(m.ID)}
}

// ListMatches returns all matches, newest first. An optional ?date=YYYY-MM-DD
// query narrows the list to matches played that day.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := timeutil.ParseDate(dateParam)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)", h.logger)
			return
		}
		day = parsed
	}

	matches := h.svc.Matches()
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		if !day.IsZero() && timeutil.FormatDate(m.Date) != timeutil.FormatDate(day) {
			continue
		}
		out = append(out, h.matchResponse(m))
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}

// GetMatch returns a single match by id.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, ok := h.svc.MatchByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "match not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.matchResponse(m), h.logger)
}

// CreateMatch stores a finished match record.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var m domain.Match
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	saved, err := h.svc.AddMatch(r.Context(), m)
	if err != nil {
		// A failed persist still leaves the record in memory; report it as
		// created with its failed status so clients can surface the state.
		var perr *sync.PersistenceError
		if !errors.As(err, &perr) {
			h.writeServiceError(w, r, err)
			return
		}
	}

	resp := h.matchResponse(saved)
	if saved.SeasonID != "" {
		if linkErr := h.svc.UpdateSeasonWithMatch(r.Context(), saved.SeasonID, saved.ID); linkErr != nil {
			logger := loggerFromContext(r, h.logger)
			if logger != nil {
				logger.Warn("season link failed", "seasonId", saved.SeasonID, "matchId", saved.ID, "error", linkErr)
			}
		}
	}
	writeJSON(w, http.StatusCreated, resp, h.logger)
}

// DeleteMatch removes a single match.
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteMatch(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id}, h.logger)
}

// ClearMatches empties the match collection where the backend allows it.
func (h *Handler) ClearMatches(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearMatches(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"}, h.logger)
}
