package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// DefaultLength is the number of random bytes in a generated token (256 bits).
const DefaultLength = 32

// Generate returns a DefaultLength-byte random token.
func Generate() (string, error) {
	return GenerateN(DefaultLength)
}

// GenerateN returns a token made of n random bytes.
func GenerateN(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidLength
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrRandomSourceFailure, err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the hex SHA-256 digest of a token for at-rest storage.
// Tokens are high-entropy, so an unsalted fast hash is sufficient.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
