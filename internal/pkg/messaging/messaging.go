package messaging

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/atomic"
)

// HeaderCorrelationID carries the request correlation ID across the broker.
const HeaderCorrelationID = "cID"

// ErrUnsupported is returned when a feature is not supported by the selected broker.
//
// For example, not all brokers support delayed delivery.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source. Consume blocks until ctx is done or
// the subscription fails.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
//
// With auto-ack enabled a nil error acks the message and a non-nil error nacks it.
// Handlers may also ack or nack explicitly.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning.
	Key     []byte
	Headers map[string]string
	// Delay is used for deferred delivery (NSQ and Memory only).
	Delay time.Duration
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a broker-agnostic received message.
type Message interface {
	Body() []byte
	Key() []byte
	// Header returns the value of a header, matching the key case-insensitively.
	Header(key string) string
	Headers() map[string]string
	ID() string
	Topic() string
	Timestamp() time.Time

	// Ack acknowledges successful processing. Only the first Ack or Nack has effect.
	Ack(ctx context.Context) error
	// Nack requests redelivery where the broker supports it.
	Nack(ctx context.Context) error
}

// message is the Message implementation shared by every driver.
type message struct {
	body      []byte
	key       []byte
	headers   map[string]string
	id        string
	topic     string
	timestamp time.Time

	ack  func(ctx context.Context) error
	nack func(ctx context.Context) error

	responded atomic.Bool
}

func (m *message) Body() []byte               { return m.body }
func (m *message) Key() []byte                { return m.key }
func (m *message) Headers() map[string]string { return m.headers }
func (m *message) ID() string                 { return m.id }
func (m *message) Topic() string              { return m.topic }
func (m *message) Timestamp() time.Time       { return m.timestamp }

func (m *message) Header(key string) string {
	if v, ok := m.headers[key]; ok {
		return v
	}
	for k, v := range m.headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (m *message) Ack(ctx context.Context) error {
	return m.respond(ctx, m.ack)
}

func (m *message) Nack(ctx context.Context) error {
	return m.respond(ctx, m.nack)
}

func (m *message) respond(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) || fn == nil {
		return nil
	}
	return fn(ctx)
}
