package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalInputPassesThroughUnchanged(t *testing.T) {
	raw := "1b671a64-40d5-491e-99b0-da01ff1f3341"
	if got := EnsureCanonicalID(raw); got != raw {
		t.Fatalf("expected passthrough, got %s", got)
	}
	// Passthrough is idempotent across calls.
	if got := EnsureCanonicalID(EnsureCanonicalID(raw)); got != raw {
		t.Fatalf("expected repeated passthrough, got %s", got)
	}
}

func TestGeneratedIDsAreCanonical(t *testing.T) {
	inputs := []string{"", "legacy-7", "match:2023-01-05", "Jörg", "a"}
	for _, raw := range inputs {
		got := EnsureCanonicalID(raw)
		if !IsCanonical(got) {
			t.Fatalf("output %q for input %q is not canonical", got, raw)
		}
		u, err := uuid.Parse(got)
		if err != nil {
			t.Fatalf("output %q does not parse: %v", got, err)
		}
		if u.Version() != 4 || u.Variant() != uuid.RFC4122 {
			t.Fatalf("output %q has wrong version/variant nibbles", got)
		}
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	first := EnsureCanonicalID("legacy-match-42")
	second := EnsureCanonicalID("legacy-match-42")
	if first != second {
		t.Fatalf("expected identical ids for the same input, got %s and %s", first, second)
	}
}

func TestDistinctInputsProduceDistinctIDs(t *testing.T) {
	a := EnsureCanonicalID("legacy-match-1")
	b := EnsureCanonicalID("legacy-match-2")
	if a == b {
		t.Fatalf("expected different ids, both were %s", a)
	}
}

func TestIsCanonicalRejectsNearMisses(t *testing.T) {
	cases := []string{
		"1b671a64-40d5-491e-99b0-da01ff1f334",   // too short
		"1b671a64-40d5-791e-99b0-da01ff1f3341",  // wrong version nibble
		"1b671a64-40d5-491e-19b0-da01ff1f3341",  // wrong variant nibble
		"1b671a6440d5491e99b0da01ff1f3341",      // no hyphens
		"zb671a64-40d5-491e-99b0-da01ff1f3341",  // non-hex
		"1b671a64-40d5-491e-99b0-da01ff1f33412", // too long
	}
	for _, raw := range cases {
		if IsCanonical(raw) {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
