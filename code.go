package rbl

import (
	"crypto/rand"
	"strings"
)

// CodeAlphabet is the set of characters used in room join codes. Visually
// ambiguous characters (I, O, 0, 1) are excluded so codes survive being
// read off a screen or said out loud.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a room join code.
const CodeLength = 6

// NewCode returns a random room code drawn from CodeAlphabet. Uniqueness
// is the caller's problem; the keyspace is 32^6, so collisions are rare
// and a retry loop around this settles almost immediately.
func NewCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range buf {
		buf[i] = CodeAlphabet[int(buf[i])%len(CodeAlphabet)]
	}
	return string(buf)
}

// NormalizeCode upper-cases and trims a join code. Codes are stored
// upper-cased and every lookup normalizes first, so joins are
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
