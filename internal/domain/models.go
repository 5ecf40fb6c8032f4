package domain

import "time"

// Side identifies one of the two players in a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// GameWinner records the outcome of a single game.
type GameWinner string

const (
	WinnerA   GameWinner = "A"
	WinnerB   GameWinner = "B"
	WinnerTie GameWinner = "tie"
)

// BreakRule decides which side opens the next game.
type BreakRule string

const (
	// BreakRuleWinner gives the break to whoever scored or won last.
	BreakRuleWinner BreakRule = "winner"
	// BreakRuleAlternate toggles the break on every scoring event.
	BreakRuleAlternate BreakRule = "alternate"
)

// Toggle returns the other break rule.
func (r BreakRule) Toggle() BreakRule {
	if r == BreakRuleWinner {
		return BreakRuleAlternate
	}
	return BreakRuleWinner
}

// GameVariant tags which pool discipline a game was played under.
type GameVariant string

const (
	VariantEightBall GameVariant = "8-ball"
	VariantNineBall  GameVariant = "9-ball"
	VariantTenBall   GameVariant = "10-ball"
)

// Role controls what a user may do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// User is a registered player or administrator.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Login  string `json:"login"`
	Secret string `json:"secret"`
	Role   Role   `json:"role"`
}

// GameResult is one finished (or in-progress) game within a match.
// Once appended to a match's game log it is never mutated.
type GameResult struct {
	Variant     GameVariant `json:"variant"`
	ScoreA      int         `json:"scoreA"`
	ScoreB      int         `json:"scoreB"`
	Winner      GameWinner  `json:"winner,omitempty"`
	BreakAndRun bool        `json:"breakAndRun,omitempty"`
}

// Match is a completed or in-progress sequence of games between two players.
// The game log is append-only during play and frozen once Winner is set and
// the record persisted.
type Match struct {
	ID          string        `json:"id"`
	Date        time.Time     `json:"date"`
	PlayerA     string        `json:"playerA"`
	PlayerB     string        `json:"playerB"`
	PlayerAName string        `json:"playerAName,omitempty"`
	PlayerBName string        `json:"playerBName,omitempty"`
	Games       []GameResult  `json:"games"`
	Winner      string        `json:"winner"` // player id; empty on a tie
	SeasonID    string        `json:"seasonId,omitempty"`
	TimeElapsed int           `json:"timeElapsed,omitempty"` // whole seconds
	Notes       string        `json:"notes,omitempty"`
	GamesToWin  int           `json:"gamesToWin,omitempty"`
	GameTypes   []GameVariant `json:"gameTypes,omitempty"`
}

// Season groups matches played toward a shared win target and prize.
// Invariant: Active == false implies EndDate is set.
type Season struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	GameTypes     []GameVariant `json:"gameTypes"`
	MatchesToWin  int           `json:"matchesToWin"`
	BreakRule     BreakRule     `json:"breakRule"`
	Prize         string        `json:"prize,omitempty"`
	Active        bool          `json:"active"`
	MatchIDs      []string      `json:"matchIds"`
	Winner        string        `json:"winner,omitempty"`
	GamesPerMatch int           `json:"gamesPerMatch,omitempty"`
	Stake         float64       `json:"stake,omitempty"`
}

// HasMatch reports whether the season already references the given match.
func (s Season) HasMatch(matchID string) bool {
	for _, id := range s.MatchIDs {
		if id == matchID {
			return true
		}
	}
	return false
}

// Ended reports whether the season has been closed out.
func (s Season) Ended() bool {
	return !s.Active
}
