package entity

import "time"

// OtpRecord is a stored passcode digest awaiting verification.
type OtpRecord struct {
	ID         int64
	Email      string
	CodeDigest string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// IsExpired reports whether the record can no longer be verified at now.
func (r OtpRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Issuance is the input of a conditional insert.
type Issuance struct {
	Email      string
	CodeDigest string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	// Cutoff is the latest previous issuance time that still permits this one.
	Cutoff time.Time
}

// CooldownUntil is the moment the next issuance for the same email becomes possible.
func (i Issuance) CooldownUntil() time.Time {
	return i.IssuedAt.Add(i.IssuedAt.Sub(i.Cutoff))
}
