package hash

import "crypto/sha256"

// SHA256 implements Hash with an unkeyed SHA-256 digest.
type SHA256 struct{}

// NewSHA256 returns a SHA-256 hasher.
func NewSHA256() *SHA256 {
	return &SHA256{}
}

// Hash returns the hex-encoded SHA-256 of str.
func (*SHA256) Hash(str string) ([]byte, error) {
	sum := sha256.Sum256([]byte(str))
	return encodeHex(sum[:]), nil
}

// Verify checks whether the plaintext string matches the given hash.
func (s *SHA256) Verify(hashed, str string) bool {
	return verifyHex(s, hashed, str)
}
