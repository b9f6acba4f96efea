package inbound

import (
	"github.com/shandysiswandi/gocontact/internal/contact/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Submit stores a contact message after consuming its OTP.
// @Summary Submit contact message
// @Description Consumes the OTP for the email, then stores and forwards the message. Send the code here directly: a code already used on /api/v1/otp/verify is rejected. An Idempotency-Key header makes retries safe.
// @Tags Contact
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key for safe retries"
// @Param request body SubmitRequest true "Contact payload"
// @Success 200 {object} router.successResponse{data=SubmitResponse} "Message submitted"
// @Failure 400 {object} router.errorResponse "Validation error or Invalid OTP"
// @Failure 409 {object} router.errorResponse "Already submitted"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/contact/messages [post]
func (h *HTTPEndpoint) Submit(r *router.Request) (any, error) {
	var req SubmitRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Submit(r.Context(), usecase.SubmitInput{
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
		Name:           req.Name,
		Email:          req.Email,
		Message:        req.Message,
		OTP:            req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return SubmitResponse{ID: out.ID}, nil
}
