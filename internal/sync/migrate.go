package sync

import (
	"context"
	"fmt"
	"log/slog"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/logging"
)

// MigrationSource yields the records to copy. The embedded local store
// satisfies it.
type MigrationSource interface {
	Matches(ctx context.Context) []domain.Match
	Seasons(ctx context.Context) []domain.Season
}

// MigrationTarget accepts the copied records. The remote gateway, behind its
// Backend adapter, satisfies it.
type MigrationTarget interface {
	PutMatch(ctx context.Context, m domain.Match) error
	PutSeason(ctx context.Context, s domain.Season) error
	LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error
}

// MigrationReport summarises a one-shot local-to-remote copy.
type MigrationReport struct {
	Matches int      `json:"matches"`
	Seasons int      `json:"seasons"`
	Errors  []string `json:"errors,omitempty"`
}

// MigrateLocalToRemote copies every local match and season to the target,
// rebuilding season-match links from each season's member list. The source is
// never modified; the caller decides what to do with the local data
// afterwards. Per-record failures are collected, not fatal.
func MigrateLocalToRemote(ctx context.Context, src MigrationSource, dst MigrationTarget, logger *slog.Logger) MigrationReport {
	var report MigrationReport

	for _, m := range src.Matches(ctx) {
		if err := dst.PutMatch(ctx, m); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("match %s: %v", m.ID, err))
			continue
		}
		report.Matches++
	}

	for _, season := range src.Seasons(ctx) {
		if err := dst.PutSeason(ctx, season); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("season %s: %v", season.ID, err))
			continue
		}
		report.Seasons++
		for _, matchID := range season.MatchIDs {
			if err := dst.LinkSeasonMatch(ctx, season.ID, matchID); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("link %s/%s: %v", season.ID, matchID, err))
			}
		}
	}

	logging.Info(logger, "migration finished",
		"matches", report.Matches,
		"seasons", report.Seasons,
		"errors", len(report.Errors))
	return report
}
