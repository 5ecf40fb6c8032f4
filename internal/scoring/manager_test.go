package scoring

import (
	"testing"

	"pool-tracker-service/internal/domain"
)

func TestManagerStartGetRemove(t *testing.T) {
	m := NewManager()

	id, session := m.Start(Config{PlayerA: "a", PlayerB: "b"})
	if session == nil || id == "" {
		t.Fatalf("expected a session and id")
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got.AdjustScore(domain.SideA, true)
	if session.CurrentGame().ScoreA != 1 {
		t.Fatalf("expected shared session state")
	}

	m.Remove(id)
	if _, err := m.Get(id); err == nil {
		t.Fatalf("expected error after removal")
	}
	if m.Count() != 0 {
		t.Fatalf("expected no live sessions, got %d", m.Count())
	}
}
