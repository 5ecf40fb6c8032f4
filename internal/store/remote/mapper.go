package remote

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/identity"
	"pool-tracker-service/internal/scoring"
)

// matchRow mirrors the matches relation's column shape.
type matchRow struct {
	ID          string
	Date        time.Time
	PlayerA     string
	PlayerB     string
	PlayerAName sql.NullString
	PlayerBName sql.NullString
	Games       []byte
	Winner      sql.NullString
	SeasonID    sql.NullString
	TimeElapsed sql.NullInt64
	Notes       sql.NullString
	GamesToWin  sql.NullInt64
}

// seasonRow mirrors the seasons relation's column shape.
type seasonRow struct {
	ID            string
	Name          string
	StartDate     time.Time
	EndDate       sql.NullTime
	GameTypes     []byte
	MatchesToWin  int
	BreakRule     string
	Prize         sql.NullString
	Active        bool
	Winner        sql.NullString
	GamesPerMatch sql.NullInt64
	Stake         sql.NullFloat64
}

func (r matchRow) toDomain() (domain.Match, error) {
	var games []domain.GameResult
	if len(r.Games) > 0 {
		if err := json.Unmarshal(r.Games, &games); err != nil {
			return domain.Match{}, fmt.Errorf("decode games for match %s: %w", r.ID, err)
		}
	}

	gamesToWin := scoring.DefaultGamesToWin
	if r.GamesToWin.Valid {
		gamesToWin = int(r.GamesToWin.Int64)
	}

	return domain.Match{
		ID:          r.ID,
		Date:        r.Date,
		PlayerA:     r.PlayerA,
		PlayerB:     r.PlayerB,
		PlayerAName: r.PlayerAName.String,
		PlayerBName: r.PlayerBName.String,
		Games:       games,
		Winner:      r.Winner.String,
		SeasonID:    r.SeasonID.String,
		TimeElapsed: int(r.TimeElapsed.Int64),
		Notes:       r.Notes.String,
		GamesToWin:  gamesToWin,
		GameTypes:   variantsFromGames(games),
	}, nil
}

func (r seasonRow) toDomain() (domain.Season, error) {
	var gameTypes []domain.GameVariant
	if len(r.GameTypes) > 0 {
		if err := json.Unmarshal(r.GameTypes, &gameTypes); err != nil {
			return domain.Season{}, fmt.Errorf("decode game types for season %s: %w", r.ID, err)
		}
	}

	var endDate *time.Time
	if r.EndDate.Valid {
		t := r.EndDate.Time
		endDate = &t
	}

	return domain.Season{
		ID:            r.ID,
		Name:          r.Name,
		StartDate:     r.StartDate,
		EndDate:       endDate,
		GameTypes:     gameTypes,
		MatchesToWin:  r.MatchesToWin,
		BreakRule:     domain.BreakRule(r.BreakRule),
		Prize:         r.Prize.String,
		Active:        r.Active,
		Winner:        r.Winner.String,
		GamesPerMatch: int(r.GamesPerMatch.Int64),
		Stake:         r.Stake.Float64,
	}, nil
}

// normalizeMatch coerces every identifier field onto the canonical grammar
// the relation enforces as its key format.
func normalizeMatch(m domain.Match) domain.Match {
	m.ID = identity.EnsureCanonicalID(m.ID)
	m.PlayerA = identity.EnsureCanonicalID(m.PlayerA)
	m.PlayerB = identity.EnsureCanonicalID(m.PlayerB)
	if m.Winner != "" {
		m.Winner = identity.EnsureCanonicalID(m.Winner)
	}
	if m.SeasonID != "" {
		m.SeasonID = identity.EnsureCanonicalID(m.SeasonID)
	}
	return m
}

// normalizeSeason coerces the season's identifier fields onto the canonical
// grammar.
func normalizeSeason(s domain.Season) domain.Season {
	s.ID = identity.EnsureCanonicalID(s.ID)
	if s.Winner != "" {
		s.Winner = identity.EnsureCanonicalID(s.Winner)
	}
	if len(s.MatchIDs) > 0 {
		// Copy before rewriting; the caller's member list must keep its
		// original ids.
		ids := make([]string, len(s.MatchIDs))
		for i, id := range s.MatchIDs {
			ids[i] = identity.EnsureCanonicalID(id)
		}
		s.MatchIDs = ids
	}
	return s
}

func matchUpsertArgs(m domain.Match) ([]any, error) {
	games, err := json.Marshal(m.Games)
	if err != nil {
		return nil, fmt.Errorf("encode games for match %s: %w", m.ID, err)
	}
	return []any{
		m.ID,
		m.Date,
		m.PlayerA,
		m.PlayerB,
		nullString(m.PlayerAName),
		nullString(m.PlayerBName),
		games,
		nullString(m.Winner),
		nullString(m.SeasonID),
		nullInt(m.TimeElapsed),
		nullString(m.Notes),
		nullInt(m.GamesToWin),
	}, nil
}

func seasonUpsertArgs(s domain.Season) ([]any, error) {
	gameTypes, err := json.Marshal(s.GameTypes)
	if err != nil {
		return nil, fmt.Errorf("encode game types for season %s: %w", s.ID, err)
	}
	return []any{
		s.ID,
		s.Name,
		s.StartDate,
		nullTime(s.EndDate),
		gameTypes,
		s.MatchesToWin,
		string(s.BreakRule),
		nullString(s.Prize),
		s.Active,
		nullString(s.Winner),
		nullInt(s.GamesPerMatch),
		nullFloat(s.Stake),
	}, nil
}

func variantsFromGames(games []domain.GameResult) []domain.GameVariant {
	seen := make(map[domain.GameVariant]struct{})
	var out []domain.GameVariant
	for _, g := range games {
		if _, ok := seen[g.Variant]; ok {
			continue
		}
		seen[g.Variant] = struct{}{}
		out = append(out, g.Variant)
	}
	return out
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
