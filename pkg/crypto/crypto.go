package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// GenerateToken returns a random URL-safe token of the requested byte length.
// The result is base64 URL encoded without padding, so the string is longer
// than the byte length requested.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("crypto: token length must be positive")
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateSecret returns a random alphanumeric string of the given length,
// suitable for client secrets and test fixtures.
func GenerateSecret(length int) (string, error) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	if length <= 0 {
		return "", errors.New("crypto: secret length must be positive")
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
