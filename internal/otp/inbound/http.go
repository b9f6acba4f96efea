package inbound

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp/send", end.Send)
	r.POST("/api/v1/otp/verify", end.Verify)
}
