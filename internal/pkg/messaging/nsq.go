package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQTopicRequired is returned when the topic is empty.
	ErrNSQTopicRequired = errors.New("messaging: nsq topic is required")
	// ErrNSQChannelRequired is returned when the channel is empty.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
	// ErrNSQProducerAddrRequired is returned when the producer address is missing.
	ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")
	// ErrNSQConsumerAddrsRequired is returned when no NSQD/lookupd consumer addresses are configured.
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq consumer nsqd/lookupd addresses are required")
)

// NSQConfig configures the NSQ implementation.
type NSQConfig struct {
	// ProducerAddr is the NSQD address for publishing.
	ProducerAddr string
	// ConsumerNSQDAddrs lists NSQD addresses for consumers.
	ConsumerNSQDAddrs []string
	// ConsumerLookupdAddrs lists lookupd addresses; they take precedence over NSQDs.
	ConsumerLookupdAddrs []string
	// MaxInFlight is the default consumer in-flight limit.
	MaxInFlight int
}

// NSQ is a messaging implementation backed by NSQ.
//
// NSQ has no native headers, so every body is wrapped in a JSON envelope that
// carries them. Bodies that are not an envelope are delivered as they are.
type NSQ struct {
	producer *nsq.Producer
	cfg      NSQConfig

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

type nsqEnvelope struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

// NewNSQ constructs an NSQ messaging client.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}

	if cfg.ProducerAddr != "" {
		p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
		}
		p.SetLoggerLevel(nsq.LogLevelError)
		n.producer = p
	}

	return n, nil
}

// Close stops NSQ consumers and the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := append([]*nsq.Consumer{}, n.consumers...)
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}

	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

// Publish sends a message to an NSQ topic, deferred when msg.Delay is set.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrNSQTopicRequired
	}
	if n.producer == nil {
		return PublishResult{}, ErrNSQProducerAddrRequired
	}

	body, err := encodeNSQ(msg)
	if err != nil {
		return PublishResult{}, err
	}

	if msg.Delay > 0 {
		err = n.producer.DeferredPublish(destination, msg.Delay, body)
	} else {
		err = n.producer.Publish(destination, body)
	}
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume starts consuming messages from an NSQ topic/channel and blocks until ctx is done.
func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrNSQTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if len(n.cfg.ConsumerNSQDAddrs) == 0 && len(n.cfg.ConsumerLookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}

	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	ccfg := nsq.NewConfig()
	ccfg.MaxInFlight = max(co.maxInFlight, n.cfg.MaxInFlight, co.concurrency)

	consumer, err := nsq.NewConsumer(source, co.channel, ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)
	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		return dispatch(ctx, "nsq", handler, newNSQMessage(source, m), co.autoAck)
	}), co.concurrency)

	if err := n.track(consumer); err != nil {
		stopNSQConsumer(consumer)
		return err
	}

	if len(n.cfg.ConsumerLookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.ConsumerLookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.ConsumerNSQDAddrs)
	}
	if err != nil {
		stopNSQConsumer(consumer)
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		stopNSQConsumer(consumer)
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func (n *NSQ) track(consumer *nsq.Consumer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return io.ErrClosedPipe
	}
	n.consumers = append(n.consumers, consumer)
	return nil
}

func stopNSQConsumer(consumer *nsq.Consumer) {
	consumer.Stop()
	<-consumer.StopChan
}

func encodeNSQ(msg OutgoingMessage) ([]byte, error) {
	b, err := json.Marshal(nsqEnvelope{Headers: msg.Headers, Body: msg.Body})
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq encode: %w", err)
	}
	return b, nil
}

func decodeNSQ(raw []byte) (body []byte, headers map[string]string) {
	var env nsqEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Body == nil {
		return raw, nil
	}
	return env.Body, env.Headers
}

func newNSQMessage(topic string, m *nsq.Message) *message {
	body, headers := decodeNSQ(m.Body)

	return &message{
		body:      body,
		headers:   headers,
		id:        fmt.Sprintf("%x", m.ID),
		topic:     topic,
		timestamp: time.Unix(0, m.Timestamp),
		ack: func(context.Context) error {
			m.Finish()
			return nil
		},
		nack: func(context.Context) error {
			m.Requeue(-1)
			return nil
		},
	}
}
