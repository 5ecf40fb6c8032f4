package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/scoring"
	"pool-tracker-service/internal/sync"
)

// sessionState is the live view of a scoring session returned after every
// action.
type sessionState struct {
	ID             string              `json:"id"`
	CurrentGame    domain.GameResult   `json:"currentGame"`
	Games          []domain.GameResult `json:"games"`
	WinsA          int                 `json:"winsA"`
	WinsB          int                 `json:"winsB"`
	Ties           int                 `json:"ties"`
	NextBreak      domain.Side         `json:"nextBreak"`
	BreakRule      domain.BreakRule    `json:"breakRule"`
	BreakRunsA     int                 `json:"breakRunsA"`
	BreakRunsB     int                 `json:"breakRunsB"`
	GamesToWin     int                 `json:"gamesToWin"`
	Finished       bool                `json:"finished"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
}

func sessionStateOf(id string, s *scoring.Session) sessionState {
	counts := s.WinCounts()
	runsA, runsB := s.BreakRuns()
	return sessionState{
		ID:             id,
		CurrentGame:    s.CurrentGame(),
		Games:          s.Games(),
		WinsA:          counts.A,
		WinsB:          counts.B,
		Ties:           counts.Ties,
		NextBreak:      s.NextBreak(),
		BreakRule:      s.BreakRule(),
		BreakRunsA:     runsA,
		BreakRunsB:     runsB,
		GamesToWin:     s.GamesToWin(),
		Finished:       s.Finished(),
		ElapsedSeconds: int(s.Elapsed().Seconds()),
	}
}

// StartSession opens a live scoring session.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerA     string             `json:"playerA"`
		PlayerB     string             `json:"playerB"`
		PlayerAName string             `json:"playerAName"`
		PlayerBName string             `json:"playerBName"`
		Variant     domain.GameVariant `json:"variant"`
		GamesToWin  int                `json:"gamesToWin"`
		BreakRule   domain.BreakRule   `json:"breakRule"`
		FirstBreak  domain.Side        `json:"firstBreak"`
		SeasonID    string             `json:"seasonId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if body.PlayerA == "" || body.PlayerB == "" {
		writeError(w, r, http.StatusBadRequest, "both players required", h.logger)
		return
	}
	if body.SeasonID != "" {
		season, ok := h.svc.SeasonByID(body.SeasonID)
		if !ok {
			writeError(w, r, http.StatusNotFound, "season not found", h.logger)
			return
		}
		if season.Ended() {
			writeError(w, r, http.StatusBadRequest, "season has already ended", h.logger)
			return
		}
		// Season play inherits the season's configuration when the request
		// leaves it unset.
		if body.BreakRule == "" {
			body.BreakRule = season.BreakRule
		}
		if body.GamesToWin == 0 {
			body.GamesToWin = season.GamesPerMatch
		}
		if body.Variant == "" && len(season.GameTypes) > 0 {
			body.Variant = season.GameTypes[0]
		}
	}

	id, session := h.sessions.Start(scoring.Config{
		PlayerA:     body.PlayerA,
		PlayerB:     body.PlayerB,
		PlayerAName: body.PlayerAName,
		PlayerBName: body.PlayerBName,
		Variant:     body.Variant,
		GamesToWin:  body.GamesToWin,
		BreakRule:   body.BreakRule,
		FirstBreak:  body.FirstBreak,
		SeasonID:    body.SeasonID,
	})
	writeJSON(w, http.StatusCreated, sessionStateOf(id, session), h.logger)
}

// GetSession returns the live state of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error(), h.logger)
		return
	}
	h.sessionMu.Lock()
	state := sessionStateOf(id, session)
	h.sessionMu.Unlock()
	writeJSON(w, http.StatusOK, state, h.logger)
}

// AdjustScore moves one side's score by a single point in either direction.
func (h *Handler) AdjustScore(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, func(s *scoring.Session, body actionBody) error {
		if !body.Side.Valid() {
			return errors.New("side must be A or B")
		}
		s.AdjustScore(body.Side, body.Delta >= 0)
		return nil
	})
}

// RecordBreakRun marks the current game as a break-and-run for one side.
func (h *Handler) RecordBreakRun(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, func(s *scoring.Session, body actionBody) error {
		if !body.Side.Valid() {
			return errors.New("side must be A or B")
		}
		s.RecordBreakAndRun(body.Side)
		return nil
	})
}

// FinishGame closes the current game with an explicit winner (or a tie).
func (h *Handler) FinishGame(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, func(s *scoring.Session, body actionBody) error {
		switch body.Winner {
		case domain.WinnerA, domain.WinnerB, domain.WinnerTie:
			s.FinishGame(body.Winner)
			return nil
		default:
			return errors.New("winner must be A, B, or tie")
		}
	})
}

// ToggleBreakRule flips between winner and alternate breaks mid-session.
func (h *Handler) ToggleBreakRule(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, func(s *scoring.Session, body actionBody) error {
		s.ToggleBreakRule()
		return nil
	})
}

// FinalizeSession freezes the session into a match record and stores it.
func (h *Handler) FinalizeSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error(), h.logger)
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	h.sessionMu.Lock()
	match := session.Finalize("", body.Notes)
	h.sessionMu.Unlock()

	saved, err := h.svc.AddMatch(r.Context(), match)
	if err != nil {
		var perr *sync.PersistenceError
		if !errors.As(err, &perr) {
			h.writeServiceError(w, r, err)
			return
		}
	}
	if saved.SeasonID != "" {
		if linkErr := h.svc.UpdateSeasonWithMatch(r.Context(), saved.SeasonID, saved.ID); linkErr != nil {
			logger := loggerFromContext(r, h.logger)
			if logger != nil {
				logger.Warn("season link failed", "seasonId", saved.SeasonID, "matchId", saved.ID, "error", linkErr)
			}
		}
	}

	h.sessions.Remove(id)
	writeJSON(w, http.StatusCreated, h.matchResponse(saved), h.logger)
}

type actionBody struct {
	Side   domain.Side       `json:"side"`
	Delta  int               `json:"delta"`
	Winner domain.GameWinner `json:"winner"`
}

func (h *Handler) sessionAction(w http.ResponseWriter, r *http.Request, apply func(*scoring.Session, actionBody) error) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error(), h.logger)
		return
	}

	var body actionBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	h.sessionMu.Lock()
	applyErr := apply(session, body)
	var state sessionState
	if applyErr == nil {
		state = sessionStateOf(id, session)
	}
	h.sessionMu.Unlock()

	if applyErr != nil {
		writeError(w, r, http.StatusBadRequest, applyErr.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, state, h.logger)
}
