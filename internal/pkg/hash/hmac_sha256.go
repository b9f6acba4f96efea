package hash

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSHA256 implements Hash with HMAC-SHA256.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC-SHA256 of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	return encodeHex(h.Sum(nil)), nil
}

// Verify checks whether the plaintext string matches the given hash.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return verifyHex(s, hashed, str)
}
