// Package sync owns the authoritative in-memory match and season collections
// and reconciles them with whichever persistence backend is active. Writes are
// optimistic: memory first, then the backend; a failed persist marks the
// record instead of rolling it back.
package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/logging"
	"pool-tracker-service/internal/metrics"
)

// State reports the sync layer's lifecycle phase.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

type nowFunc func() time.Time

// Options configures optional Service collaborators.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Notifier Notifier
	Sink     EventSink
	Now      nowFunc
}

// Service is the single writer for the shared match/season collections.
type Service struct {
	backend  Backend
	logger   *slog.Logger
	metrics  *metrics.Recorder
	notifier Notifier
	sink     EventSink
	now      nowFunc

	mu      sync.RWMutex
	state   State
	matches map[string]domain.Match
	seasons map[string]domain.Season
	status  map[recordKey]RecordState

	subs     []io.Closer
	changeCh chan struct{}
}

// NewService constructs a Service over the given backend. Call Load before
// serving reads.
func NewService(backend Backend, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		backend:  backend,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		sink:     opts.Sink,
		now:      now,
		state:    StateLoading,
		matches:  make(map[string]domain.Match),
		seasons:  make(map[string]domain.Season),
		status:   make(map[recordKey]RecordState),
		changeCh: make(chan struct{}, 1),
	}
}

// Backend returns the active backend's name.
func (s *Service) Backend() string {
	return s.backend.Name()
}

// State returns the current lifecycle phase.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Load replaces the in-memory collections with a fresh backend snapshot.
// Total failure still transitions to Ready with empty collections so the
// service is never stuck loading.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	start := s.now()
	snap, err := s.backend.Load(ctx)
	s.metrics.RecordLoad(s.backend.Name(), s.now().Sub(start), err)

	s.mu.Lock()
	s.matches = make(map[string]domain.Match, len(snap.Matches))
	for _, m := range snap.Matches {
		s.matches[m.ID] = m
	}
	s.seasons = make(map[string]domain.Season, len(snap.Seasons))
	for _, season := range snap.Seasons {
		s.seasons[season.ID] = season
	}
	s.status = make(map[recordKey]RecordState)
	s.state = StateReady
	s.mu.Unlock()

	if err != nil {
		logging.Error(s.logger, "load failed, starting with empty collections", err,
			logging.FieldBackend, s.backend.Name())
		s.notify(LevelError, fmt.Sprintf("could not load records from the %s store", s.backend.Name()))
	} else {
		logging.Info(s.logger, "collections loaded",
			logging.FieldBackend, s.backend.Name(),
			"matches", len(snap.Matches), "seasons", len(snap.Seasons))
	}

	s.collectionChanged(CollectionMatches)
	s.collectionChanged(CollectionSeasons)
	return err
}

// Matches returns all matches, newest first.
func (s *Service) Matches() []domain.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Seasons returns all seasons, newest first.
func (s *Service) Seasons() []domain.Season {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Season, 0, len(s.seasons))
	for _, season := range s.seasons {
		out = append(out, cloneSeason(season))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

// MatchByID returns a single match if present.
func (s *Service) MatchByID(id string) (domain.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	return m, ok
}

// SeasonByID returns a single season if present.
func (s *Service) SeasonByID(id string) (domain.Season, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	season, ok := s.seasons[id]
	return cloneSeason(season), ok
}

// AddMatch validates and stores a match: in-memory first (replace-by-id or
// append), then the active backend.
func (s *Service) AddMatch(ctx context.Context, m domain.Match) (domain.Match, error) {
	if m.PlayerA == "" {
		return domain.Match{}, s.reject("playerA", "no player selected")
	}
	if m.PlayerB == "" {
		return domain.Match{}, s.reject("playerB", "no opponent selected")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Date.IsZero() {
		m.Date = s.now()
	}

	key := recordKey{kind: kindMatch, id: m.ID}
	s.mu.Lock()
	s.matches[m.ID] = m
	s.status[key] = StatePending
	s.mu.Unlock()
	s.collectionChanged(CollectionMatches)

	err := s.persist(ctx, key, "put match", func() error {
		return s.backend.PutMatch(ctx, m)
	})
	return m, err
}

// AddSeason validates and stores a season.
func (s *Service) AddSeason(ctx context.Context, season domain.Season) (domain.Season, error) {
	if season.Name == "" {
		return domain.Season{}, s.reject("name", "season name required")
	}
	if len(season.GameTypes) == 0 {
		return domain.Season{}, s.reject("gameTypes", "at least one game variant required")
	}
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if season.StartDate.IsZero() {
		season.StartDate = s.now()
	}
	if season.BreakRule == "" {
		season.BreakRule = domain.BreakRuleWinner
	}
	season.Active = true
	season.EndDate = nil

	key := recordKey{kind: kindSeason, id: season.ID}
	s.mu.Lock()
	s.seasons[season.ID] = season
	s.status[key] = StatePending
	s.mu.Unlock()
	s.collectionChanged(CollectionSeasons)

	err := s.persist(ctx, key, "put season", func() error {
		return s.backend.PutSeason(ctx, season)
	})
	return season, err
}

// UpdateSeasonWithMatch appends a match to a season's member list and writes
// the season plus, on the remote backend, the season-match link row.
func (s *Service) UpdateSeasonWithMatch(ctx context.Context, seasonID, matchID string) error {
	s.mu.Lock()
	season, ok := s.seasons[seasonID]
	if !ok {
		s.mu.Unlock()
		return s.reject("seasonId", "season not found")
	}
	if season.Ended() {
		s.mu.Unlock()
		return s.reject("seasonId", "season has already ended")
	}
	if !season.HasMatch(matchID) {
		season.MatchIDs = append(season.MatchIDs, matchID)
		s.seasons[seasonID] = season
	}
	key := recordKey{kind: kindSeason, id: seasonID}
	s.status[key] = StatePending
	s.mu.Unlock()
	s.collectionChanged(CollectionSeasons)

	return s.persist(ctx, key, "update season", func() error {
		if err := s.backend.PutSeason(ctx, season); err != nil {
			return err
		}
		return s.backend.LinkSeasonMatch(ctx, seasonID, matchID)
	})
}

// EndSeason closes a season: active flips off, the end date is stamped, and
// the winner recorded. An ended season is read-only afterwards.
func (s *Service) EndSeason(ctx context.Context, seasonID, winner string) error {
	s.mu.Lock()
	season, ok := s.seasons[seasonID]
	if !ok {
		s.mu.Unlock()
		return s.reject("seasonId", "season not found")
	}
	if season.Ended() {
		s.mu.Unlock()
		return s.reject("seasonId", "season has already ended")
	}
	endDate := s.now()
	season.Active = false
	season.EndDate = &endDate
	season.Winner = winner
	s.seasons[seasonID] = season
	key := recordKey{kind: kindSeason, id: seasonID}
	s.status[key] = StatePending
	s.mu.Unlock()
	s.collectionChanged(CollectionSeasons)

	return s.persist(ctx, key, "end season", func() error {
		return s.backend.PutSeason(ctx, season)
	})
}

// DeleteMatch removes a match from memory, from any season member list, and
// from the backend. Per-record deletes are allowed on every backend.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.matches, id)
	delete(s.status, recordKey{kind: kindMatch, id: id})
	var touched []domain.Season
	for sid, season := range s.seasons {
		if season.HasMatch(id) {
			season.MatchIDs = removeID(season.MatchIDs, id)
			s.seasons[sid] = season
			touched = append(touched, season)
		}
	}
	s.mu.Unlock()
	s.collectionChanged(CollectionMatches)
	if len(touched) > 0 {
		s.collectionChanged(CollectionSeasons)
	}

	key := recordKey{kind: kindMatch, id: id}
	return s.persist(ctx, key, "delete match", func() error {
		// Backend delete drops link rows before the match row; the updated
		// member lists are persisted for backends that embed them.
		for _, season := range touched {
			if err := s.backend.PutSeason(ctx, season); err != nil {
				return err
			}
		}
		return s.backend.DeleteMatch(ctx, id)
	})
}

// DeleteSeason removes a season. Refused on backends that disallow
// destructive deletes of shared season data.
func (s *Service) DeleteSeason(ctx context.Context, id string) error {
	if !s.backend.AllowsBulkDelete() {
		return s.blocked("delete season")
	}

	s.mu.Lock()
	delete(s.seasons, id)
	delete(s.status, recordKey{kind: kindSeason, id: id})
	s.mu.Unlock()
	s.collectionChanged(CollectionSeasons)

	key := recordKey{kind: kindSeason, id: id}
	return s.persist(ctx, key, "delete season", func() error {
		return s.backend.DeleteSeason(ctx, id)
	})
}

// ClearMatches empties the match collection. Refused outright in remote mode
// before any backend call.
func (s *Service) ClearMatches(ctx context.Context) error {
	if !s.backend.AllowsBulkDelete() {
		return s.blocked("clear matches")
	}

	if err := s.backend.ClearMatches(ctx); err != nil {
		s.notify(LevelError, "could not clear matches")
		return &PersistenceError{Backend: s.backend.Name(), Operation: "clear matches", Err: err}
	}

	s.mu.Lock()
	s.matches = make(map[string]domain.Match)
	s.mu.Unlock()
	s.collectionChanged(CollectionMatches)
	return nil
}

// ClearSeasons empties the season collection, with the same remote-mode gate.
func (s *Service) ClearSeasons(ctx context.Context) error {
	if !s.backend.AllowsBulkDelete() {
		return s.blocked("clear seasons")
	}

	if err := s.backend.ClearSeasons(ctx); err != nil {
		s.notify(LevelError, "could not clear seasons")
		return &PersistenceError{Backend: s.backend.Name(), Operation: "clear seasons", Err: err}
	}

	s.mu.Lock()
	s.seasons = make(map[string]domain.Season)
	s.mu.Unlock()
	s.collectionChanged(CollectionSeasons)
	return nil
}

// StartLiveSync subscribes to backend change notifications. Each notification
// requests a reconcile; the Reconciler coalesces and performs them.
func (s *Service) StartLiveSync() error {
	subs, err := s.backend.Subscribe(s.requestReconcile)
	if err != nil {
		return fmt.Errorf("start live sync: %w", err)
	}
	s.subs = subs
	if len(subs) > 0 {
		logging.Info(s.logger, "live sync subscriptions open", logging.FieldCount, len(subs))
	}
	return nil
}

// Close releases change subscriptions.
func (s *Service) Close() {
	for _, sub := range s.subs {
		if err := sub.Close(); err != nil {
			logging.Warn(s.logger, "subscription close failed", "error", err)
		}
	}
	s.subs = nil
}

// ReconcileRequests exposes the coalesced change-notification channel.
func (s *Service) ReconcileRequests() <-chan struct{} {
	return s.changeCh
}

func (s *Service) requestReconcile() {
	select {
	case s.changeCh <- struct{}{}:
	default:
	}
}

// persist runs a backend write for an optimistic in-memory update and tracks
// the record's pending/confirmed/failed status. The in-memory state is left
// in place on failure; the caller is notified instead.
func (s *Service) persist(ctx context.Context, key recordKey, op string, fn func() error) error {
	start := s.now()
	err := fn()
	s.metrics.RecordBackendOp(s.backend.Name(), op, s.now().Sub(start), err)

	s.mu.Lock()
	if _, tracked := s.status[key]; tracked {
		if err != nil {
			s.status[key] = StateFailed
		} else {
			s.status[key] = StateConfirmed
		}
	}
	s.mu.Unlock()

	if err != nil {
		logging.Error(s.logger, "persist failed", err,
			logging.FieldBackend, s.backend.Name(),
			logging.FieldOperation, op,
			logging.FieldRecordID, key.id)
		s.notify(LevelError, fmt.Sprintf("could not save to the %s store: %s", s.backend.Name(), op))
		return &PersistenceError{Backend: s.backend.Name(), Operation: op, Err: err}
	}
	return nil
}

func (s *Service) reject(field, message string) error {
	err := &ValidationError{Field: field, Message: message}
	s.notify(LevelWarn, message)
	return err
}

func (s *Service) blocked(op string) error {
	err := &BlockedOperationError{Operation: op, Backend: s.backend.Name()}
	logging.Warn(s.logger, "blocked destructive operation",
		logging.FieldBackend, s.backend.Name(), logging.FieldOperation, op)
	s.notify(LevelWarn, err.Error())
	return err
}

func (s *Service) notify(level Level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, message)
	}
}

func (s *Service) collectionChanged(collection string) {
	if s.sink != nil {
		s.sink.CollectionChanged(collection)
	}
}

// cloneSeason detaches the member list so callers never share a backing array
// with the stored season.
func cloneSeason(season domain.Season) domain.Season {
	if len(season.MatchIDs) > 0 {
		season.MatchIDs = append([]string(nil), season.MatchIDs...)
	}
	return season
}

// removeID builds a fresh slice; compacting in place would rewrite a backing
// array that earlier read snapshots may still reference.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
