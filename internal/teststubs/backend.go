package teststubs

import (
	"context"
	"io"
	"sync"

	"pool-tracker-service/internal/domain"
	syncsvc "pool-tracker-service/internal/sync"
)

// FakeBackend is an in-memory sync backend for handler and server tests.
type FakeBackend struct {
	BackendName string
	AllowBulk   bool
	LoadErr     error
	PutErr      error

	mu      sync.Mutex
	matches map[string]domain.Match
	seasons map[string]domain.Season
	links   []string
}

// NewFakeBackend returns an empty backend that permits bulk deletes.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		AllowBulk: true,
		matches:   make(map[string]domain.Match),
		seasons:   make(map[string]domain.Season),
	}
}

func (b *FakeBackend) Name() string {
	if b.BackendName == "" {
		return "fake"
	}
	return b.BackendName
}

func (b *FakeBackend) Load(ctx context.Context) (syncsvc.Snapshot, error) {
	if b.LoadErr != nil {
		return syncsvc.Snapshot{}, b.LoadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := syncsvc.Snapshot{}
	for _, m := range b.matches {
		snap.Matches = append(snap.Matches, m)
	}
	for _, s := range b.seasons {
		snap.Seasons = append(snap.Seasons, s)
	}
	return snap, nil
}

func (b *FakeBackend) PutMatch(ctx context.Context, m domain.Match) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	b.mu.Lock()
	b.matches[m.ID] = m
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) PutSeason(ctx context.Context, s domain.Season) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	b.mu.Lock()
	b.seasons[s.ID] = s
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) LinkSeasonMatch(ctx context.Context, seasonID, matchID string) error {
	b.mu.Lock()
	b.links = append(b.links, seasonID+"/"+matchID)
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) DeleteMatch(ctx context.Context, id string) error {
	b.mu.Lock()
	delete(b.matches, id)
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) DeleteSeason(ctx context.Context, id string) error {
	b.mu.Lock()
	delete(b.seasons, id)
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) ClearMatches(ctx context.Context) error {
	b.mu.Lock()
	b.matches = make(map[string]domain.Match)
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) ClearSeasons(ctx context.Context) error {
	b.mu.Lock()
	b.seasons = make(map[string]domain.Season)
	b.mu.Unlock()
	return nil
}

func (b *FakeBackend) AllowsBulkDelete() bool { return b.AllowBulk }

func (b *FakeBackend) Subscribe(onChange func()) ([]io.Closer, error) { return nil, nil }

// Links returns the recorded season-match link writes.
func (b *FakeBackend) Links() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.links))
	copy(out, b.links)
	return out
}
