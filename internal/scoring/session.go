package scoring

import (
	"time"

	"pool-tracker-service/internal/domain"
)

// DefaultGamesToWin applies when a session is started without a target.
const DefaultGamesToWin = 3

type nowFunc func() time.Time

// Config describes how a scoring session should be started.
type Config struct {
	PlayerA     string
	PlayerB     string
	PlayerAName string
	PlayerBName string
	Variant     domain.GameVariant
	GamesToWin  int
	BreakRule   domain.BreakRule
	FirstBreak  domain.Side
	SeasonID    string
	Now         nowFunc
}

// Session owns the transient state of one in-progress match. All operations
// are pure state transitions with no I/O; callers serialize access (a session
// belongs to exactly one live scoring view).
type Session struct {
	cfg       Config
	current   domain.GameResult
	finished  []domain.GameResult
	breakRule domain.BreakRule
	nextBreak domain.Side
	breakRunA int
	breakRunB int
	startedAt time.Time
	now       nowFunc
}

// WinCounts holds the tallies derived from the finished-game log.
type WinCounts struct {
	A    int
	B    int
	Ties int
}

// NewSession starts a fresh session with a zero-score first game.
func NewSession(cfg Config) *Session {
	if cfg.GamesToWin <= 0 {
		cfg.GamesToWin = DefaultGamesToWin
	}
	if cfg.BreakRule == "" {
		cfg.BreakRule = domain.BreakRuleWinner
	}
	if !cfg.FirstBreak.Valid() {
		cfg.FirstBreak = domain.SideA
	}
	if cfg.Variant == "" {
		cfg.Variant = domain.VariantEightBall
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		cfg:       cfg,
		current:   domain.GameResult{Variant: cfg.Variant},
		breakRule: cfg.BreakRule,
		nextBreak: cfg.FirstBreak,
		startedAt: now(),
		now:       now,
	}
}

// AdjustScore moves the named side's current-game score by exactly one point.
// Decrements clamp at zero and never touch the break assignment; increments
// reassign the break per the active rule.
func (s *Session) AdjustScore(side domain.Side, increment bool) {
	if !side.Valid() {
		return
	}
	if !increment {
		if side == domain.SideA && s.current.ScoreA > 0 {
			s.current.ScoreA--
		}
		if side == domain.SideB && s.current.ScoreB > 0 {
			s.current.ScoreB--
		}
		return
	}
	s.addPoint(side)
	s.advanceBreak(side)
}

// RecordBreakAndRun marks the current game as a break-and-run for the given
// side: one extra point, the flag set, and that side's run counter bumped.
// The break assignment moves exactly as it would for a scored point.
func (s *Session) RecordBreakAndRun(side domain.Side) {
	if !side.Valid() {
		return
	}
	s.current.BreakAndRun = true
	s.addPoint(side)
	if side == domain.SideA {
		s.breakRunA++
	} else {
		s.breakRunB++
	}
	s.advanceBreak(side)
}

// FinishGame closes the current game with the given winner, appends it to the
// log, and opens a fresh zero-score game of the same variant.
func (s *Session) FinishGame(winner domain.GameWinner) {
	game := s.current
	game.Winner = winner
	s.finished = append(s.finished, game)
	s.current = domain.GameResult{Variant: s.cfg.Variant}

	switch winner {
	case domain.WinnerA:
		s.advanceBreak(domain.SideA)
	case domain.WinnerB:
		s.advanceBreak(domain.SideB)
	default:
		// A tie still toggles under the alternate rule; under the winner
		// rule the break stays where it was.
		if s.breakRule == domain.BreakRuleAlternate {
			s.nextBreak = s.nextBreak.Opposite()
		}
	}
}

// ToggleBreakRule flips between winner and alternate breaks. The current
// break assignment is left as-is.
func (s *Session) ToggleBreakRule() {
	s.breakRule = s.breakRule.Toggle()
}

// WinCounts recomputes the per-side win tallies from the finished-game log,
// so they can never drift from it: A + B + Ties == len(Games()).
func (s *Session) WinCounts() WinCounts {
	var counts WinCounts
	for _, g := range s.finished {
		switch g.Winner {
		case domain.WinnerA:
			counts.A++
		case domain.WinnerB:
			counts.B++
		default:
			counts.Ties++
		}
	}
	return counts
}

// Finished reports whether either side has reached the games-to-win target.
func (s *Session) Finished() bool {
	counts := s.WinCounts()
	return counts.A >= s.cfg.GamesToWin || counts.B >= s.cfg.GamesToWin
}

// Elapsed returns the wall-clock time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.now().Sub(s.startedAt)
}

// CurrentGame returns a copy of the in-progress game.
func (s *Session) CurrentGame() domain.GameResult {
	return s.current
}

// Games returns a copy of the finished-game log in play order.
func (s *Session) Games() []domain.GameResult {
	out := make([]domain.GameResult, len(s.finished))
	copy(out, s.finished)
	return out
}

// NextBreak returns the side breaking the next rack.
func (s *Session) NextBreak() domain.Side {
	return s.nextBreak
}

// BreakRule returns the active break rule.
func (s *Session) BreakRule() domain.BreakRule {
	return s.breakRule
}

// BreakRuns returns the per-side break-and-run counters.
func (s *Session) BreakRuns() (a, b int) {
	return s.breakRunA, s.breakRunB
}

// GamesToWin returns the configured target.
func (s *Session) GamesToWin() int {
	return s.cfg.GamesToWin
}

// Finalize freezes the session into a Match record, transferring ownership of
// the result to the caller. The elapsed time is captured in whole seconds.
func (s *Session) Finalize(id string, notes string) domain.Match {
	counts := s.WinCounts()
	winner := ""
	switch {
	case counts.A > counts.B:
		winner = s.cfg.PlayerA
	case counts.B > counts.A:
		winner = s.cfg.PlayerB
	}

	return domain.Match{
		ID:          id,
		Date:        s.startedAt,
		PlayerA:     s.cfg.PlayerA,
		PlayerB:     s.cfg.PlayerB,
		PlayerAName: s.cfg.PlayerAName,
		PlayerBName: s.cfg.PlayerBName,
		Games:       s.Games(),
		Winner:      winner,
		SeasonID:    s.cfg.SeasonID,
		TimeElapsed: int(s.Elapsed() / time.Second),
		Notes:       notes,
		GamesToWin:  s.cfg.GamesToWin,
		GameTypes:   playedVariants(s.finished),
	}
}

func (s *Session) addPoint(side domain.Side) {
	if side == domain.SideA {
		s.current.ScoreA++
	} else {
		s.current.ScoreB++
	}
}

// advanceBreak applies the break rule after a scoring event by the given side.
func (s *Session) advanceBreak(side domain.Side) {
	switch s.breakRule {
	case domain.BreakRuleAlternate:
		s.nextBreak = s.nextBreak.Opposite()
	default:
		s.nextBreak = side
	}
}

func playedVariants(games []domain.GameResult) []domain.GameVariant {
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
