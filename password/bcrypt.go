// Package password hashes and verifies login passwords under the fixed
// byte-length constraints of bcrypt.
package password

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinBytes is the minimum accepted password length in UTF-8 bytes after
	// surrounding-whitespace trim.
	MinBytes = 8
	// MaxBytes is the bcrypt input ceiling. Longer passwords are truncated at
	// a rune boundary so hash and verify stay symmetric.
	MaxBytes = 72
)

// Policy validates, hashes, and verifies passwords. The zero value is not
// usable; construct with [New].
type Policy struct {
	minBytes int
	cost     int
}

// New returns a Policy with the given minimum byte length. Values below 1
// fall back to [MinBytes].
func New(minBytes int) *Policy {
	if minBytes < 1 {
		minBytes = MinBytes
	}
	return &Policy{minBytes: minBytes, cost: bcrypt.DefaultCost}
}

// Hash trims surrounding whitespace, enforces the minimum length, truncates
// to [MaxBytes] at a rune boundary, and returns a salted self-describing
// hash. The output embeds algorithm, cost, and salt, so verification never
// needs externally stored parameters.
func (p *Policy) Hash(plain string) (string, error) {
	trimmed := strings.TrimSpace(plain)
	if len(trimmed) < p.minBytes {
		return "", &PolicyError{Reason: "password too short"}
	}

	out, err := bcrypt.GenerateFromPassword([]byte(Truncate(trimmed)), p.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plain matches the stored hash. The plaintext is
// trimmed and truncated exactly as Hash does, so a password that was
// truncated at registration verifies regardless of which path truncated
// first. A malformed stored hash is treated as a mismatch, never an error.
func (p *Policy) Verify(plain, encodedHash string) bool {
	trimmed := Truncate(strings.TrimSpace(plain))
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(trimmed)) == nil
}

// PolicyError marks input that falls outside the length policy.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return "password policy: " + e.Reason
}

// Truncate cuts s to at most [MaxBytes] UTF-8 bytes without splitting a
// multi-byte character.
func Truncate(s string) string {
	if len(s) <= MaxBytes {
		return s
	}

	cut := MaxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
