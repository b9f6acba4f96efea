package inbound

import (
	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
)

// HTTPEndpoint exposes the passcode issue and verify handlers.
type HTTPEndpoint struct {
	uc uc
}

// Send issues a passcode to an email address.
// @Summary Send OTP
// @Description Generates a one-time passcode and emails it. One request per email per cooldown window.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body SendRequest true "Send payload"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 405 {object} router.errorResponse "Method not allowed"
// @Failure 429 {object} router.errorResponse "Please wait before requesting another OTP."
// @Failure 500 {object} router.errorResponse "Failed to store or send the OTP"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.Issue(r.Context(), usecase.IssueInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return SendResponse{}, nil
}

// Verify consumes a passcode.
// @Summary Verify OTP
// @Description Checks the passcode for an email. A passcode verifies at most once, so a code verified here can no longer submit a contact message.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse "OTP verified"
// @Failure 400 {object} router.errorResponse "Validation error or Invalid OTP"
// @Failure 405 {object} router.errorResponse "Method not allowed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.Verify(r.Context(), usecase.VerifyInput{Email: req.Email, OTP: req.OTP}); err != nil {
		return nil, err
	}

	return VerifyResponse{}, nil
}
