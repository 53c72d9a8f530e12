package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters sized for an interactive login path: a single pass
// over 64 MiB keeps verification under ~100ms on the API instances while
// still forcing memory-hard work on an attacker.
const (
	argonSaltSize        = 16
	argonPasses   uint32 = 1
	argonMemoryKB uint32 = 64 * 1024
	argonLanes    uint8  = 4
	argonTagSize  uint32 = 32
)

// HashPassword derives an Argon2id digest of the password. The stored form
// is "<salt>:<digest>" with both halves standard base64, which keeps the
// column a single opaque string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, argonPasses, argonMemoryKB, argonLanes, argonTagSize)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(digest), nil
}

// VerifyPassword reports whether the password matches a stored hash. A
// malformed stored value is an error; a clean mismatch is (false, nil).
func VerifyPassword(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	saltPart, digestPart, found := strings.Cut(encoded, ":")
	if !found || strings.Contains(digestPart, ":") {
		return false, fmt.Errorf("invalid password hash format")
	}

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	stored, err := base64.StdEncoding.DecodeString(digestPart)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, argonPasses, argonMemoryKB, argonLanes, uint32(len(stored)))

	return subtle.ConstantTimeCompare(computed, stored) == 1, nil
}
