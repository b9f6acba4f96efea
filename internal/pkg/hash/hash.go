package hash

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// AlgorithmSHA256 selects plain SHA-256.
	AlgorithmSHA256 = "sha256"
	// AlgorithmHMACSHA256 selects HMAC-SHA256 keyed with a server secret.
	AlgorithmHMACSHA256 = "hmac-sha256"
	// AlgorithmBLAKE2b selects BLAKE2b-256.
	AlgorithmBLAKE2b = "blake2b"
)

var (
	// ErrUnknownAlgorithm indicates an unsupported hash algorithm name.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")
	// ErrSecretRequired is returned when a keyed algorithm has no secret.
	ErrSecretRequired = errors.New("hash: secret is required")
)

// Hash produces and checks hex-encoded digests.
type Hash interface {
	// Hash returns the hex-encoded digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether hashed is the digest of str.
	Verify(hashed, str string) bool
}

// NewFromAlgorithm builds a Hash by algorithm name.
func NewFromAlgorithm(algorithm, secret string) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmSHA256:
		return NewSHA256(), nil
	case AlgorithmHMACSHA256:
		if secret == "" {
			return nil, ErrSecretRequired
		}
		return NewHMACSHA256(secret), nil
	case AlgorithmBLAKE2b:
		return NewBLAKE2b(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

func encodeHex(sum []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}

func verifyHex(h Hash, hashed, str string) bool {
	expected, err := h.Hash(str)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashed), expected) == 1
}
