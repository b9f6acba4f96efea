package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/gocontact/internal/contact/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishMessageSubmitted(ctx context.Context, msg usecase.MessageSubmittedEvent) error {
	ctx, span := m.ins.Tracer("contact.outbound.mq").Start(ctx, "PublishMessageSubmitted")
	defer span.End()

	body, err := json.Marshal(event.ContactMessageSubmittedMessage{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, event.ContactMessageSubmittedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.ID, 10)),
		Headers: map[string]string{messaging.HeaderCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
