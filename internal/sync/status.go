package sync

// RecordState tracks whether an optimistic in-memory write has been durably
// persisted. Records loaded from a backend start out confirmed.
type RecordState string

const (
	StatePending   RecordState = "pending"
	StateConfirmed RecordState = "confirmed"
	StateFailed    RecordState = "failed"
)

type recordKind string

const (
	kindMatch  recordKind = "match"
	kindSeason recordKind = "season"
)

type recordKey struct {
	kind recordKind
	id   string
}

// MatchStatus returns the persistence state for a match record.
func (s *Service) MatchStatus(id string) RecordState {
	return s.recordStatus(recordKey{kind: kindMatch, id: id})
}

// SeasonStatus returns the persistence state for a season record.
func (s *Service) SeasonStatus(id string) RecordState {
	return s.recordStatus(recordKey{kind: kindSeason, id: id})
}

func (s *Service) recordStatus(key recordKey) RecordState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.status[key]; ok {
		return state
	}
	return StateConfirmed
}
