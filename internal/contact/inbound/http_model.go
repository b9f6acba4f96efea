package inbound

import "github.com/shandysiswandi/gocontact/internal/contact/usecase"

const headerIdempotencyKey = "Idempotency-Key"

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	OTP     string `json:"otp"`
}

type SubmitResponse struct {
	ID int64 `json:"id,string"`
}

func (SubmitResponse) Message() string {
	return usecase.MsgSubmitted
}

func (s SubmitResponse) Data() any {
	return s
}
