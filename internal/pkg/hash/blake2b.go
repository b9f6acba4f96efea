package hash

import "golang.org/x/crypto/blake2b"

// BLAKE2b implements Hash with BLAKE2b-256.
type BLAKE2b struct{}

// NewBLAKE2b returns a BLAKE2b-256 hasher.
func NewBLAKE2b() *BLAKE2b {
	return &BLAKE2b{}
}

// Hash returns the hex-encoded BLAKE2b-256 of str.
func (*BLAKE2b) Hash(str string) ([]byte, error) {
	sum := blake2b.Sum256([]byte(str))
	return encodeHex(sum[:]), nil
}

// Verify checks whether the plaintext string matches the given hash.
func (b *BLAKE2b) Verify(hashed, str string) bool {
	return verifyHex(b, hashed, str)
}
