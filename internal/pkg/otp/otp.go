package otp

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// DefaultDigits is the width used when an unsupported width is configured.
const DefaultDigits = otp.Digits(4)

const (
	minDigits = 4
	maxDigits = 9
)

// Generator produces plaintext one-time passcodes.
type Generator interface {
	// Generate returns a new passcode.
	Generate() (string, error)
}

// Numeric generates fixed-width decimal passcodes.
type Numeric struct {
	digits otp.Digits
	low    *big.Int
	span   *big.Int
	random io.Reader
}

// NewNumeric constructs a Numeric generator.
//
// If digits is outside 4..9 it falls back to DefaultDigits.
func NewNumeric(digits otp.Digits) *Numeric {
	return newNumeric(digits, rand.Reader)
}

func newNumeric(digits otp.Digits, random io.Reader) *Numeric {
	if digits.Length() < minDigits || digits.Length() > maxDigits {
		digits = DefaultDigits
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits.Length()-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	return &Numeric{
		digits: digits,
		low:    low,
		span:   span,
		random: random,
	}
}

// Digits returns the configured code width.
func (n *Numeric) Digits() otp.Digits {
	return n.digits
}

// Generate returns a code uniformly distributed over [10^(d-1), 10^d - 1].
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.random, n.span)
	if err != nil {
		return "", err
	}
	v.Add(v, n.low)

	return n.digits.Format(int32(v.Int64())), nil
}
