package stats

import (
	"testing"

	"pool-tracker-service/internal/domain"
)

func match(id, playerA, playerB, winner string, games ...domain.GameResult) domain.Match {
	return domain.Match{ID: id, PlayerA: playerA, PlayerB: playerB, Winner: winner, Games: games}
}

func TestSummarizeCountsResults(t *testing.T) {
	matches := []domain.Match{
		match("m1", "p1", "p2", "p1",
			domain.GameResult{Winner: domain.WinnerA},
			domain.GameResult{Winner: domain.WinnerA, BreakAndRun: true},
			domain.GameResult{Winner: domain.WinnerB},
		),
		match("m2", "p2", "p1", "p2",
			domain.GameResult{Winner: domain.WinnerA},
		),
		match("m3", "p1", "p2", ""),
		match("m4", "p3", "p4", "p3"),
	}

	s := Summarize(matches, "p1")
	if s.Matches != 3 {
		t.Fatalf("expected 3 matches, got %d", s.Matches)
	}
	if s.Wins != 1 || s.Losses != 1 || s.Ties != 1 {
		t.Fatalf("unexpected record %+v", s)
	}
	if s.GamesWon != 2 || s.GamesLost != 2 {
		t.Fatalf("unexpected game totals %+v", s)
	}
	if s.BreakRuns != 1 {
		t.Fatalf("expected 1 break run, got %d", s.BreakRuns)
	}
	if s.WinRate < 0.33 || s.WinRate > 0.34 {
		t.Fatalf("expected win rate ~1/3, got %f", s.WinRate)
	}
}

func TestSummarizeAveragePoints(t *testing.T) {
	matches := []domain.Match{
		match("m1", "p1", "p2", "p1",
			domain.GameResult{ScoreA: 3, ScoreB: 1, Winner: domain.WinnerA},
			domain.GameResult{ScoreA: 1, ScoreB: 2, Winner: domain.WinnerB},
		),
	}

	s := Summarize(matches, "p1")
	if s.AvgPoints != 2.0 {
		t.Fatalf("expected 2.0 avg points, got %f", s.AvgPoints)
	}
}

func TestSummarizeEmptyMatches(t *testing.T) {
	s := Summarize(nil, "p1")
	if s.Matches != 0 || s.WinRate != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSeasonStandingsOrderedByWins(t *testing.T) {
	season := domain.Season{ID: "s1", MatchIDs: []string{"m1", "m2", "m3"}}
	matches := []domain.Match{
		match("m1", "p1", "p2", "p1", domain.GameResult{Winner: domain.WinnerA}),
		match("m2", "p1", "p2", "p1", domain.GameResult{Winner: domain.WinnerA}),
		match("m3", "p2", "p1", "p2", domain.GameResult{Winner: domain.WinnerA}),
		// Not a season member; must be ignored.
		match("m4", "p2", "p1", "p2"),
	}

	standings := SeasonStandings(season, matches)
	if len(standings) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(standings))
	}
	if standings[0].PlayerID != "p1" || standings[0].Wins != 2 {
		t.Fatalf("expected p1 on top with 2 wins, got %+v", standings[0])
	}
	if standings[1].PlayerID != "p2" || standings[1].Wins != 1 {
		t.Fatalf("expected p2 second with 1 win, got %+v", standings[1])
	}
}

func TestSeasonStandingsTiesBrokenByGamesWon(t *testing.T) {
	season := domain.Season{ID: "s1", MatchIDs: []string{"m1", "m2"}}
	matches := []domain.Match{
		match("m1", "p1", "p2", "p1",
			domain.GameResult{Winner: domain.WinnerA},
			domain.GameResult{Winner: domain.WinnerA},
		),
		match("m2", "p2", "p1", "p2",
			domain.GameResult{Winner: domain.WinnerA},
		),
	}

	standings := SeasonStandings(season, matches)
	if standings[0].PlayerID != "p1" {
		t.Fatalf("expected p1 first on games won, got %+v", standings)
	}
}
