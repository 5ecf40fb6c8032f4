package sync

import (
	"context"
	"io"

	"pool-tracker-service/internal/domain"
)

// Snapshot is a full read of both collections, with season member lists
// already folded in.
type Snapshot struct {
	Matches []domain.Match
	Seasons []domain.Season
}

// Backend is the single call path to whichever store is active. The
// which-backend decision is made once, at construction, not per call site.
type Backend interface {
	Name() string
	Load(ctx context.Context) (Snapshot, error)
	PutMatch(ctx context.Context, m domain.Match) error
	PutSeason(ctx context.Context, s domain.Season) error
	LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error
	DeleteMatch(ctx context.Context, id string) error
	DeleteSeason(ctx context.Context, id string) error
	ClearMatches(ctx context.Context) error
	ClearSeasons(ctx context.Context) error

	// AllowsBulkDelete gates destructive bulk operations; the shared remote
	// store refuses them.
	AllowsBulkDelete() bool

	// Subscribe registers a change callback where the backend supports live
	// notifications; backends without a feed return no closers.
	Subscribe(onChange func()) ([]io.Closer, error)
}
