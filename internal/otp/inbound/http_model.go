package inbound

import "github.com/shandysiswandi/gocontact/internal/otp/usecase"

type SendRequest struct {
	Email string `json:"email"`
}

type SendResponse struct{}

func (SendResponse) Message() string {
	return usecase.MsgSent
}

func (SendResponse) Data() any {
	return nil
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyResponse struct{}

func (VerifyResponse) Message() string {
	return usecase.MsgVerified
}

func (VerifyResponse) Data() any {
	return nil
}
