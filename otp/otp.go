// Package otp generates, hashes, and verifies short numeric one-time codes.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrFormat marks input that is not a code at all: wrong length or non-digit
// characters. Callers distinguish it from a correct-format mismatch so they
// can report differently and skip lockout weighting.
var ErrFormat = errors.New("malformed otp code")

// Generate returns a cryptographically secure digit string of exactly the
// given length. Each digit is drawn uniformly, so leading zeros are as likely
// as anything else.
func Generate(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", fmt.Errorf("otp length %d out of range", length)
	}

	var b strings.Builder
	b.Grow(length)

	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// Hash returns the hex SHA-256 digest of the code. Deterministic on purpose:
// the stored digest is looked up by recomputing it, never by decrypting.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Verify checks input against a stored digest. It returns [ErrFormat] when
// input has the wrong length or contains a non-digit; otherwise it reports
// whether the recomputed digest matches in constant time.
func Verify(input, storedHash string, expectedLength int) (bool, error) {
	if len(input) != expectedLength {
		return false, fmt.Errorf("%w: expected %d digits", ErrFormat, expectedLength)
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return false, fmt.Errorf("%w: non-digit character", ErrFormat)
		}
	}

	computed := Hash(input)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1, nil
}
