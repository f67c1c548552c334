package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// AlgorithmEd25519 is the only signing algorithm the service supports.
const AlgorithmEd25519 = "ed25519"

// Key is the process-wide signing key, loaded once at startup and passed by
// reference into every signing call. It is identified on the wire by
// "<algorithm>:<version>".
type Key struct {
	Algorithm string
	Version   string
	Private   ed25519.PrivateKey
}

// ParseKey parses the configuration form "ed25519 <version> <seed>" where
// seed is the 32-byte private seed in unpadded standard base64.
func ParseKey(s string) (*Key, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 3 {
		return nil, errors.New("signing key: expected \"<algorithm> <version> <base64 seed>\"")
	}

	if fields[0] != AlgorithmEd25519 {
		return nil, fmt.Errorf("signing key: unsupported algorithm %q", fields[0])
	}

	seed, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(fields[2], "="))
	if err != nil {
		return nil, fmt.Errorf("signing key: decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return &Key{
		Algorithm: AlgorithmEd25519,
		Version:   fields[1],
		Private:   ed25519.NewKeyFromSeed(seed),
	}, nil
}

// GenerateKey creates a fresh random key with the given version label.
func GenerateKey(version string) (*Key, error) {
	if strings.TrimSpace(version) == "" {
		return nil, errors.New("signing key: version is required")
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("signing key: generate: %w", err)
	}

	return &Key{
		Algorithm: AlgorithmEd25519,
		Version:   version,
		Private:   priv,
	}, nil
}

// ID returns the wire identifier of the key, e.g. "ed25519:0".
func (k *Key) ID() string {
	return k.Algorithm + ":" + k.Version
}

// PublicBase64 returns the public key in unpadded standard base64, the form
// published to verifiers.
func (k *Key) PublicBase64() string {
	pub := k.Private.Public().(ed25519.PublicKey)
	return base64.RawStdEncoding.EncodeToString(pub)
}

// Encode serialises the key back to its configuration form.
func (k *Key) Encode() string {
	seed := k.Private.Seed()
	return fmt.Sprintf("%s %s %s", k.Algorithm, k.Version, base64.RawStdEncoding.EncodeToString(seed))
}
