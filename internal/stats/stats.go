// Package stats derives player and season figures from finished matches.
// Everything is computed on demand from the match log; nothing is stored.
package stats

import (
	"sort"

	"pool-tracker-service/internal/domain"
)

// PlayerSummary aggregates one player's results across a set of matches.
type PlayerSummary struct {
	PlayerID  string  `json:"playerId"`
	Matches   int     `json:"matches"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Ties      int     `json:"ties"`
	GamesWon  int     `json:"gamesWon"`
	GamesLost int     `json:"gamesLost"`
	BreakRuns int     `json:"breakRuns"`
	WinRate   float64 `json:"winRate"`
	AvgPoints float64 `json:"avgPoints"` // points scored per game played
}

// Standing is one row in a season table, ordered by match wins.
type Standing struct {
	PlayerID  string `json:"playerId"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Ties      int    `json:"ties"`
	GamesWon  int    `json:"gamesWon"`
	BreakRuns int    `json:"breakRuns"`
}

// Summarize computes a player's summary over the given matches. Matches the
// player did not take part in are skipped.
func Summarize(matches []domain.Match, playerID string) PlayerSummary {
	summary := PlayerSummary{PlayerID: playerID}
	var points, gamesPlayed int

	for _, m := range matches {
		side, ok := sideOf(m, playerID)
		if !ok {
			continue
		}
		summary.Matches++
		switch m.Winner {
		case playerID:
			summary.Wins++
		case "":
			summary.Ties++
		default:
			summary.Losses++
		}
		won, lost, runs := gameTotals(m.Games, side)
		summary.GamesWon += won
		summary.GamesLost += lost
		summary.BreakRuns += runs
		gamesPlayed += len(m.Games)
		for _, g := range m.Games {
			if side == domain.SideA {
				points += g.ScoreA
			} else {
				points += g.ScoreB
			}
		}
	}

	if summary.Matches > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.Matches)
	}
	if gamesPlayed > 0 {
		summary.AvgPoints = float64(points) / float64(gamesPlayed)
	}
	return summary
}

// SeasonStandings builds a table for the season's member matches, ordered by
// wins descending, then games won, then player id for a stable order.
func SeasonStandings(season domain.Season, matches []domain.Match) []Standing {
	member := make(map[string]bool, len(season.MatchIDs))
	for _, id := range season.MatchIDs {
		member[id] = true
	}

	rows := make(map[string]*Standing)
	ensure := func(playerID string) *Standing {
		row, ok := rows[playerID]
		if !ok {
			row = &Standing{PlayerID: playerID}
			rows[playerID] = row
		}
		return row
	}

	for _, m := range matches {
		if !member[m.ID] {
			continue
		}
		for _, playerID := range []string{m.PlayerA, m.PlayerB} {
			if playerID == "" {
				continue
			}
			row := ensure(playerID)
			switch m.Winner {
			case playerID:
				row.Wins++
			case "":
				row.Ties++
			default:
				row.Losses++
			}
			if side, ok := sideOf(m, playerID); ok {
				won, _, runs := gameTotals(m.Games, side)
				row.GamesWon += won
				row.BreakRuns += runs
			}
		}
	}

	out := make([]Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].GamesWon != out[j].GamesWon {
			return out[i].GamesWon > out[j].GamesWon
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

func sideOf(m domain.Match, playerID string) (domain.Side, bool) {
	switch playerID {
	case m.PlayerA:
		return domain.SideA, true
	case m.PlayerB:
		return domain.SideB, true
	default:
		return "", false
	}
}

func gameTotals(games []domain.GameResult, side domain.Side) (won, lost, breakRuns int) {
	for _, g := range games {
		switch {
		case g.Winner == domain.GameWinner(side):
			won++
		case g.Winner == domain.GameWinner(side.Opposite()):
			lost++
		}
		if g.BreakAndRun && g.Winner == domain.GameWinner(side) {
			breakRuns++
		}
	}
	return won, lost, breakRuns
}
