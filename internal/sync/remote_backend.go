package sync

import (
	"context"
	"fmt"
	"io"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/store/remote"
)

// remoteBackend adapts the hosted Postgres gateway to the Backend interface.
type remoteBackend struct {
	gateway *remote.Gateway
}

// NewRemoteBackend wraps the remote store gateway.
func NewRemoteBackend(gateway *remote.Gateway) Backend {
	return &remoteBackend{gateway: gateway}
}

func (b *remoteBackend) Name() string { return "remote" }

// Load fetches all three relations and folds season-match links into each
// season's member list.
func (b *remoteBackend) Load(ctx context.Context) (Snapshot, error) {
	matches, err := b.gateway.FetchMatches(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load matches: %w", err)
	}
	seasons, err := b.gateway.FetchSeasons(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load seasons: %w", err)
	}
	links, err := b.gateway.FetchLinks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load season links: %w", err)
	}

	return Snapshot{
		Matches: matches,
		Seasons: foldLinks(seasons, links),
	}, nil
}

func foldLinks(seasons []domain.Season, links []remote.Link) []domain.Season {
	bySeason := make(map[string][]string, len(seasons))
	for _, l := range links {
		bySeason[l.SeasonID] = append(bySeason[l.SeasonID], l.MatchID)
	}
	for i := range seasons {
		seasons[i].MatchIDs = bySeason[seasons[i].ID]
	}
	return seasons
}

func (b *remoteBackend) PutMatch(ctx context.Context, m domain.Match) error {
	return b.gateway.UpsertMatch(ctx, m)
}

func (b *remoteBackend) PutSeason(ctx context.Context, s domain.Season) error {
	return b.gateway.UpsertSeason(ctx, s)
}

func (b *remoteBackend) LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error {
	return b.gateway.LinkSeasonMatch(ctx, seasonID, matchID)
}

func (b *remoteBackend) DeleteMatch(ctx context.Context, id string) error {
	return b.gateway.DeleteMatch(ctx, id)
}

func (b *remoteBackend) DeleteSeason(ctx context.Context, id string) error {
	return b.gateway.DeleteSeason(ctx, id)
}

// Bulk clears are refused upstream via AllowsBulkDelete and never issue SQL.
func (b *remoteBackend) ClearMatches(ctx context.Context) error {
	return fmt.Errorf("bulk clear of matches is not supported on the remote store")
}

func (b *remoteBackend) ClearSeasons(ctx context.Context) error {
	return fmt.Errorf("bulk clear of seasons is not supported on the remote store")
}

func (b *remoteBackend) AllowsBulkDelete() bool { return false }

// Subscribe opens a change feed on each relation; any notification funnels
// into the same onChange callback.
func (b *remoteBackend) Subscribe(onChange func()) ([]io.Closer, error) {
	relations := []remote.Relation{
		remote.RelationMatches,
		remote.RelationSeasons,
		remote.RelationSeasonMatches,
	}

	var closers []io.Closer
	for _, rel := range relations {
		sub, err := b.gateway.Subscribe(rel, onChange)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, fmt.Errorf("subscribe to %s: %w", rel, err)
		}
		closers = append(closers, sub)
	}
	return closers, nil
}
