// Package handlers wires HTTP routes to the sync service, the live scoring
// manager, and the user registry.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	stdsync "sync"
	"time"

	"pool-tracker-service/internal/scoring"
	"pool-tracker-service/internal/sync"
	"pool-tracker-service/internal/user"
)

type nowFunc func() time.Time

// MigrateFunc performs a one-shot local-to-remote copy.
type MigrateFunc func(ctx context.Context) (sync.MigrationReport, error)

// Handler serves the tracker API.
type Handler struct {
	svc      *sync.Service
	sessions *scoring.Manager
	users    *user.Registry
	migrate  MigrateFunc
	logger   *slog.Logger
	now      nowFunc
	statusFn func() sync.Status

	// Sessions are single-owner state machines; mutating actions are
	// serialized here rather than inside the session.
	sessionMu stdsync.Mutex
}

// NewHandler constructs a Handler with defaults. migrate and statusFn may be
// nil when the deployment does not support them.
func NewHandler(svc *sync.Service, sessions *scoring.Manager, users *user.Registry, migrate MigrateFunc, logger *slog.Logger, statusFn func() sync.Status) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		users:    users,
		migrate:  migrate,
		logger:   logger,
		now:      time.Now,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": h.svc.Backend(),
	}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.svc.State() != sync.StateReady {
		writeError(w, r, http.StatusServiceUnavailable, "still loading", h.logger)
		return
	}
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	if h.statusFn().IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := h.statusFn().LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// writeServiceError maps sync-layer errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := sync.AsValidationError(err); ok {
		writeError(w, r, http.StatusBadRequest, verr.Error(), h.logger)
		return
	}
	if berr, ok := sync.AsBlockedOperationError(err); ok {
		writeError(w, r, http.StatusForbidden, berr.Error(), h.logger)
		return
	}
	writeError(w, r, http.StatusBadGateway, err.Error(), h.logger)
}
