package otp

import (
	"errors"
	"strconv"
	"testing"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNumeric_GenerateRange(t *testing.T) {
	gen := NewNumeric(DefaultDigits)

	for range 5000 {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code %q must be numeric", code)
		require.GreaterOrEqual(t, n, 1000)
		require.LessOrEqual(t, n, 9999)
	}
}

func TestNumeric_GenerateUniform(t *testing.T) {
	// Arrange
	gen := NewNumeric(DefaultDigits)
	const samples = 90000
	buckets := make([]int, 9) // leading digit 1..9

	// Act
	for range samples {
		code, err := gen.Generate()
		require.NoError(t, err)
		buckets[code[0]-'1']++
	}

	// Assert: each leading digit carries 1/9 of the mass. With 90k samples the
	// expected count is 10000 and the standard deviation is about 94, so a
	// window of +/-600 is far outside normal noise.
	for d, got := range buckets {
		assert.InDelta(t, samples/9, got, 600, "leading digit %d", d+1)
	}
}

func TestNewNumeric_FallbackWidth(t *testing.T) {
	assert.Equal(t, DefaultDigits, NewNumeric(otp.Digits(2)).Digits())
	assert.Equal(t, DefaultDigits, NewNumeric(otp.Digits(12)).Digits())
	assert.Equal(t, otp.DigitsSix, NewNumeric(otp.DigitsSix).Digits())

	code, err := NewNumeric(otp.DigitsSix).Generate()
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestNumeric_GenerateRandomFailure(t *testing.T) {
	gen := newNumeric(DefaultDigits, failingReader{})

	code, err := gen.Generate()

	assert.Error(t, err)
	assert.Empty(t, code)
}
