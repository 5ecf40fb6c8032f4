// Package remote wraps row-level CRUD and change subscriptions against the
// hosted Postgres store for three relations: matches, seasons, and the
// season_matches link table.
package remote

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/identity"
	"pool-tracker-service/internal/logging"
)

// Relation names a logical remote relation.
type Relation string

const (
	RelationMatches       Relation = "matches"
	RelationSeasons       Relation = "seasons"
	RelationSeasonMatches Relation = "season_matches"
)

// Link is one row of the season_matches relation.
type Link struct {
	SeasonID string
	MatchID  string
}

// Gateway provides CRUD and change subscriptions over the remote store.
type Gateway struct {
	db       *sql.DB
	conninfo string
	logger   *slog.Logger
	retry    RetryPolicy
}

// Open connects to the remote store and verifies the connection.
func Open(databaseURL string, logger *slog.Logger, retry RetryPolicy) (*Gateway, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("remote store unreachable: %w", err)
	}
	return &Gateway{db: db, conninfo: databaseURL, logger: logger, retry: retry.normalized()}, nil
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// FetchMatches returns every match row mapped into the domain shape.
func (g *Gateway) FetchMatches(ctx context.Context) ([]domain.Match, error) {
	const query = `
		SELECT id, date, player_a, player_b, player_a_name, player_b_name,
		       games, winner, season_id, time_elapsed, notes, games_to_win
		FROM matches`

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch matches: %w", err)
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var r matchRow
		if err := rows.Scan(&r.ID, &r.Date, &r.PlayerA, &r.PlayerB, &r.PlayerAName, &r.PlayerBName,
			&r.Games, &r.Winner, &r.SeasonID, &r.TimeElapsed, &r.Notes, &r.GamesToWin); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		m, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return out, nil
}

// FetchSeasons returns every season row mapped into the domain shape. Member
// match lists are not stored on the row; fold FetchLinks in afterwards.
func (g *Gateway) FetchSeasons(ctx context.Context) ([]domain.Season, error) {
	const query = `
		SELECT id, name, start_date, end_date, game_types, matches_to_win,
		       break_rule, prize, active, winner, games_per_match, stake
		FROM seasons`

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch seasons: %w", err)
	}
	defer rows.Close()

	var out []domain.Season
	for rows.Next() {
		var r seasonRow
		if err := rows.Scan(&r.ID, &r.Name, &r.StartDate, &r.EndDate, &r.GameTypes, &r.MatchesToWin,
			&r.BreakRule, &r.Prize, &r.Active, &r.Winner, &r.GamesPerMatch, &r.Stake); err != nil {
			return nil, fmt.Errorf("scan season row: %w", err)
		}
		s, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season rows: %w", err)
	}
	return out, nil
}

// FetchLinks returns every season-match link row.
func (g *Gateway) FetchLinks(ctx context.Context) ([]Link, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT season_id, match_id FROM season_matches`)
	if err != nil {
		return nil, fmt.Errorf("fetch season links: %w", err)
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.SeasonID, &l.MatchID); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}
	return out, nil
}

// UpsertMatch inserts or updates a match keyed by its canonical id. All
// identifier fields are normalized before the write because the relation
// enforces the canonical grammar on its keys.
func (g *Gateway) UpsertMatch(ctx context.Context, m domain.Match) error {
	m = normalizeMatch(m)
	args, err := matchUpsertArgs(m)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO matches (id, date, player_a, player_b, player_a_name, player_b_name,
		                     games, winner, season_id, time_elapsed, notes, games_to_win)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			player_a = EXCLUDED.player_a,
			player_b = EXCLUDED.player_b,
			player_a_name = EXCLUDED.player_a_name,
			player_b_name = EXCLUDED.player_b_name,
			games = EXCLUDED.games,
			winner = EXCLUDED.winner,
			season_id = EXCLUDED.season_id,
			time_elapsed = EXCLUDED.time_elapsed,
			notes = EXCLUDED.notes,
			games_to_win = EXCLUDED.games_to_win`

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

// UpsertSeason inserts or updates a season keyed by its canonical id.
func (g *Gateway) UpsertSeason(ctx context.Context, s domain.Season) error {
	s = normalizeSeason(s)
	args, err := seasonUpsertArgs(s)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO seasons (id, name, start_date, end_date, game_types, matches_to_win,
		                     break_rule, prize, active, winner, games_per_match, stake)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			game_types = EXCLUDED.game_types,
			matches_to_win = EXCLUDED.matches_to_win,
			break_rule = EXCLUDED.break_rule,
			prize = EXCLUDED.prize,
			active = EXCLUDED.active,
			winner = EXCLUDED.winner,
			games_per_match = EXCLUDED.games_per_match,
			stake = EXCLUDED.stake`

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season %s: %w", s.ID, err)
	}
	return nil
}

// LinkSeasonMatch writes a season-match link row. The write races the match
// row's own insert, so it retries on a bounded fixed-delay policy before
// surfacing a terminal error.
func (g *Gateway) LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error {
	seasonID = identity.EnsureCanonicalID(seasonID)
	matchID = identity.EnsureCanonicalID(matchID)

	const query = `
		INSERT INTO season_matches (season_id, match_id)
		VALUES ($1, $2)
		ON CONFLICT (season_id, match_id) DO NOTHING`

	attempt := 0
	err := g.retry.run(ctx, func() error {
		attempt++
		_, execErr := g.db.ExecContext(ctx, query, seasonID, matchID)
		if execErr != nil {
			logging.Warn(g.logger, "season link write retry",
				logging.FieldRecordID, matchID, "attempt", attempt, "error", execErr)
		}
		return execErr
	})
	if err != nil {
		return fmt.Errorf("link season %s to match %s: %w", seasonID, matchID, err)
	}
	return nil
}

// DeleteMatch removes a match row, dropping dependent season_matches rows
// first since the store does not cascade. A missing row is success.
func (g *Gateway) DeleteMatch(ctx context.Context, id string) error {
	id = identity.EnsureCanonicalID(id)

	if _, err := g.db.ExecContext(ctx, `DELETE FROM season_matches WHERE match_id = $1`, id); err != nil {
		return fmt.Errorf("delete season links for match %s: %w", id, err)
	}
	if _, err := g.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	return nil
}

// DeleteSeason removes a season row and its link rows. A missing row is
// success.
func (g *Gateway) DeleteSeason(ctx context.Context, id string) error {
	id = identity.EnsureCanonicalID(id)

	if _, err := g.db.ExecContext(ctx, `DELETE FROM season_matches WHERE season_id = $1`, id); err != nil {
		return fmt.Errorf("delete match links for season %s: %w", id, err)
	}
	if _, err := g.db.ExecContext(ctx, `DELETE FROM seasons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete season %s: %w", id, err)
	}
	return nil
}
