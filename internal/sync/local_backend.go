package sync

import (
	"context"
	"io"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/store/local"
)

// localBackend adapts the embedded store to the Backend interface. Season
// membership lives inside the season payload, so link writes are no-ops.
type localBackend struct {
	store *local.Store
}

// NewLocalBackend wraps the embedded SQLite store.
func NewLocalBackend(store *local.Store) Backend {
	return &localBackend{store: store}
}

func (b *localBackend) Name() string { return "local" }

func (b *localBackend) Load(ctx context.Context) (Snapshot, error) {
	// Reads degrade to empty rather than failing; a broken local store still
	// yields a usable (empty) Ready state.
	return Snapshot{
		Matches: b.store.Matches(ctx),
		Seasons: b.store.Seasons(ctx),
	}, nil
}

func (b *localBackend) PutMatch(ctx context.Context, m domain.Match) error {
	return b.store.PutMatch(ctx, m)
}

func (b *localBackend) PutSeason(ctx context.Context, s domain.Season) error {
	return b.store.PutSeason(ctx, s)
}

func (b *localBackend) LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error {
	return nil
}

func (b *localBackend) DeleteMatch(ctx context.Context, id string) error {
	return b.store.DeleteMatch(ctx, id)
}

func (b *localBackend) DeleteSeason(ctx context.Context, id string) error {
	return b.store.DeleteSeason(ctx, id)
}

func (b *localBackend) ClearMatches(ctx context.Context) error {
	return b.store.ClearMatches(ctx)
}

func (b *localBackend) ClearSeasons(ctx context.Context) error {
	return b.store.ClearSeasons(ctx)
}

func (b *localBackend) AllowsBulkDelete() bool { return true }

func (b *localBackend) Subscribe(onChange func()) ([]io.Closer, error) {
	return nil, nil
}
