package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateNumericCode returns a random numeric string of the given length.
// Each digit is drawn independently and uniformly, so leading zeros are
// possible.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	digits := make([]byte, length)
	buf := make([]byte, length)
	filled := 0

	for filled < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		for _, b := range buf {
			// 250 is the largest multiple of 10 that fits in a byte.
			// Values at or above it would skew digits 0-5, so redraw.
			if b >= 250 {
				continue
			}
			digits[filled] = '0' + b%10
			filled++
			if filled == length {
				break
			}
		}
	}

	return string(digits), nil
}

// Fingerprint calculates a deterministic, size-bounded SHA-256 digest of a
// token, used as the blacklist cache key instead of the raw token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
