package usecase

import "errors"

var (
	ErrRateLimited      = errors.New("otp: issued too recently")
	ErrStoreUnavailable = errors.New("otp: store unavailable")
	ErrDeliveryFailed   = errors.New("otp: delivery failed")
	ErrOtpNotMatched    = errors.New("otp: no matching record")
	ErrOtpExpired       = errors.New("otp: record expired")
)

// User-facing messages. They never describe the underlying cause.
const (
	MsgSent           = "OTP sent. Please check your inbox and spam folder."
	MsgRateLimited    = "Please wait before requesting another OTP."
	MsgStoreFailed    = "Failed to store OTP. Please try again."
	MsgDeliveryFailed = "Failed to send OTP email. Please check your email address and try again."
	MsgVerifyFailed   = "Failed to verify OTP. Please try again."
	MsgInvalidOTP     = "Invalid OTP"
	MsgVerified       = "OTP verified"
)
