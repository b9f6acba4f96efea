package inbound

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/contact/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
)

type uc interface {
	Submit(ctx context.Context, in usecase.SubmitInput) (*usecase.SubmitOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/contact/messages", end.Submit)
}
