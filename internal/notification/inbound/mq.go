package inbound

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/shared/event"
)

type consumer struct {
	name              string
	topic             string // destination where publisher sent message
	nsqConsumerName   string // for nsq
	natsConsumerName  string // for nats
	kafkaConsumerName string // for kafka
	handler           messaging.Handler
}

// RegisterMQConsumer starts the consumers listed in modules.notification.consumer_names
// and reports how many were started.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) int {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	consumers := []consumer{
		{
			name:              event.ContactMessageSubmittedConsumerNotification,
			topic:             event.ContactMessageSubmittedDestination,
			nsqConsumerName:   event.ContactMessageSubmittedConsumerNotification,
			natsConsumerName:  event.ContactMessageSubmittedConsumerNotification,
			kafkaConsumerName: event.ContactMessageSubmittedConsumerNotification,
			handler:           mqHandler.ContactMessageNotification,
		},
	}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	consumers = lo.Filter(consumers, func(c consumer, _ int) bool {
		return lo.Contains(enabled, c.name)
	})

	for _, c := range consumers {
		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return messenger.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithChannel(c.nsqConsumerName),
				messaging.WithQueueGroup(c.natsConsumerName),
				messaging.WithGroup(c.kafkaConsumerName),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
				messaging.WithMaxInFlight(10),
			)
		})
	}

	return len(consumers)
}
