// Package identity coerces arbitrary record identifiers into the canonical
// UUID form the remote store requires as its primary-key grammar.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// canonicalLength is the hyphenated 8-4-4-4-12 text form.
const canonicalLength = 36

// IsCanonical reports whether raw already satisfies the canonical id grammar:
// 36 hex characters in 8-4-4-4-12 groups with the version-4 and RFC 4122
// variant nibbles fixed.
func IsCanonical(raw string) bool {
	if len(raw) != canonicalLength || strings.Count(raw, "-") != 4 {
		return false
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

// EnsureCanonicalID returns raw unchanged when it already matches the
// canonical grammar. Anything else is mapped onto a canonical id derived
// purely from the input, so repeated calls for the same source id always
// produce the same key and can never fan out into duplicate remote rows.
func EnsureCanonicalID(raw string) string {
	if IsCanonical(raw) {
		return raw
	}

	var u uuid.UUID
	state := hashSeed(raw)
	for i := 0; i < len(u); i++ {
		state = mix(state)
		u[i] = byte(state)
	}
	u[6] = (u[6] & 0x0f) | 0x40 // version 4 nibble
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant
	return u.String()
}

// hashSeed folds the input with a 31-multiplier rolling hash, retained as a
// signed 32-bit value the way the legacy identifiers were produced.
func hashSeed(raw string) uint32 {
	var h int32
	for _, b := range []byte(raw) {
		h = h*31 + int32(b)
	}
	seed := uint32(h)
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return seed
}

// mix advances the hash state with an xorshift step so the sixteen id bytes
// do not simply repeat the seed.
func mix(state uint32) uint32 {
	state ^= state << 13
	state ^= state >> 17
	state ^= state << 5
	return state
}
