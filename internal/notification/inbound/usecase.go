package inbound

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/notification/usecase"
)

type uc interface {
	ConsumeContactMessage(ctx context.Context, in usecase.ConsumeContactMessageInput) error
}
