package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaTopicRequired is returned when the topic is empty.
	ErrKafkaTopicRequired = errors.New("messaging: kafka topic is required")
	// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned when Consume is called without a consumer group.
	ErrKafkaGroupRequired = errors.New("messaging: kafka consumer group is required")
)

// KafkaConfig configures the Kafka implementation.
type KafkaConfig struct {
	Brokers []string
	// ClientID is sent to the brokers; empty uses the kafka-go default.
	ClientID string
}

// Kafka is a messaging implementation backed by kafka-go. Acks commit offsets;
// a nack leaves the offset uncommitted so the group redelivers after a rebalance.
type Kafka struct {
	brokers []string
	dialer  *kafka.Dialer

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafka constructs a Kafka messaging client.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if cfg.ClientID != "" {
		dialer.ClientID = cfg.ClientID
	}

	return &Kafka{
		brokers: append([]string{}, cfg.Brokers...),
		dialer:  dialer,
		writers: map[string]*kafka.Writer{},
	}, nil
}

// Close shuts down all Kafka writers. Readers close when their Consume returns.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers := k.writers
	k.writers = nil
	k.mu.Unlock()

	var closeErr error
	for _, w := range writers {
		closeErr = errors.Join(closeErr, w.Close())
	}
	return closeErr
}

// Publish sends a message to a Kafka topic.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrKafkaTopicRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	writer, err := k.writer(destination)
	if err != nil {
		return PublishResult{}, err
	}

	kmsg := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for key, v := range msg.Headers {
		if key != "" {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: key, Value: []byte(v)})
		}
	}

	if err := writer.WriteMessages(ctx, kmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: kmsg.Time}, nil
}

// Consume reads a topic as part of a consumer group and blocks until ctx is done
// or the reader fails.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrKafkaTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrKafkaGroupRequired
	}
	if err := k.ensureOpen(); err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  co.group,
		Topic:    source,
		MaxBytes: 10e6,
		Dialer:   k.dialer,
	})

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgCh := make(chan kafka.Message)
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range msgCh {
				if err := dispatch(consumeCtx, "kafka", handler, newKafkaMessage(reader, m), co.autoAck); err != nil {
					slog.WarnContext(consumeCtx, "kafka message not processed",
						"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
				}
			}
		})
	}

	for {
		m, err := reader.FetchMessage(consumeCtx)
		if err != nil {
			trySendErr(errCh, err)
			break
		}
		select {
		case msgCh <- m:
			continue
		case <-consumeCtx.Done():
		}
		break
	}
	close(msgCh)
	wg.Wait()

	closeErr := reader.Close()
	var err error
	select {
	case err = <-errCh:
	default:
	}
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ctx.Err(), closeErr)
	}
	return errors.Join(fmt.Errorf("messaging: kafka consume: %w", err), closeErr)
}

func (k *Kafka) ensureOpen() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return io.ErrClosedPipe
	}
	return nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, io.ErrClosedPipe
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: k.dialer.ClientID, DialTimeout: k.dialer.Timeout},
	}
	k.writers[topic] = w
	return w, nil
}

func trySendErr(ch chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}

func newKafkaMessage(reader *kafka.Reader, m kafka.Message) *message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		if _, ok := headers[h.Key]; !ok {
			headers[h.Key] = string(h.Value)
		}
	}

	return &message{
		body:      m.Value,
		key:       m.Key,
		headers:   headers,
		id:        fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset),
		topic:     m.Topic,
		timestamp: m.Time,
		ack: func(ctx context.Context) error {
			return reader.CommitMessages(ctx, m)
		},
	}
}
