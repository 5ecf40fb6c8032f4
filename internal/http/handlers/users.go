package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/stats"
	"pool-tracker-service/internal/user"
)

// publicUser strips the secret from API responses.
type publicUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Login string      `json:"login"`
	Role  domain.Role `json:"role"`
}

func toPublicUser(u domain.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Login: u.Login, Role: u.Role}
}

// ListUsers returns all registered users without secrets.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.users.Users()
	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicUser(u))
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}

// RegisterUser creates a new account.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var u domain.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	saved, err := h.users.Register(u)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, user.ErrDuplicateLogin) {
			status = http.StatusConflict
		}
		writeError(w, r, status, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, toPublicUser(saved), h.logger)
}

// Login resolves a login/secret pair to the matching account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Login  string `json:"login"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	u, err := h.users.Authenticate(body.Login, body.Secret)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, toPublicUser(u), h.logger)
}

// PlayerStats returns a player's aggregate figures across all matches.
func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, stats.Summarize(h.svc.Matches(), id), h.logger)
}

// Migrate copies every local record to the remote store. Only mounted when a
// migration target is configured.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	if h.migrate == nil {
		writeError(w, r, http.StatusNotFound, "migration not available", h.logger)
		return
	}
	report, err := h.migrate(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, report, h.logger)
}
