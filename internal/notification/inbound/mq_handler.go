package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/gocontact/internal/notification/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(messaging.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.EnsureCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ContactMessageNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "ContactMessageNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: contact message notification", "msg_id", msg.ID())

	var payload event.ContactMessageSubmittedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of contact message notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeContactMessage(ctx, usecase.ConsumeContactMessageInput{
		ID:        payload.ID,
		Name:      payload.Name,
		Email:     payload.Email,
		Message:   payload.Message,
		CreatedAt: payload.CreatedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume contact message", "message_id", payload.ID, "error", err)
		return err
	}

	return nil
}
