// Package otp generates numeric one-time passcodes.
//
// Codes are drawn from crypto/rand and are uniform over every value of the
// configured width, never starting with a zero (a 4 digit code is one of
// 1000..9999).
package otp
