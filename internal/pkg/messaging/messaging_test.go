package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func consumeInBackground(t *testing.T, m *Memory, topic string, h Handler, opts ...ConsumeOption) (cancel func()) {
	t.Helper()

	members := func() int {
		m.mu.RLock()
		defer m.mu.RUnlock()
		n := 0
		for _, g := range m.groups[topic] {
			n += g.members
		}
		return n
	}
	before := members()

	ctx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Go(func() {
		_ = m.Consume(ctx, topic, h, opts...)
	})

	require.Eventually(t, func() bool { return members() > before }, time.Second, time.Millisecond)

	return func() {
		stop()
		wg.Wait()
	}
}

func TestMemory_PublishConsume(t *testing.T) {
	// Arrange
	m := NewMemory()
	got := make(chan Message, 1)
	cancel := consumeInBackground(t, m, "contact_message_submitted", func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}, WithChannel("notification"), WithAutoAck(true))
	defer cancel()

	// Act
	res, err := m.Publish(context.Background(), "contact_message_submitted", OutgoingMessage{
		Body:    []byte(`{"id":1}`),
		Headers: map[string]string{HeaderCorrelationID: "cid-1"},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "1", res.MessageID)

	select {
	case msg := <-got:
		assert.Equal(t, `{"id":1}`, string(msg.Body()))
		assert.Equal(t, "cid-1", msg.Header("CID"))
		assert.Equal(t, "contact_message_submitted", msg.Topic())
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemory_GroupsShareAndFanOut(t *testing.T) {
	m := NewMemory()
	var groupA, groupB atomic.Int64

	stopA1 := consumeInBackground(t, m, "t", func(context.Context, Message) error { groupA.Inc(); return nil }, WithGroup("a"))
	stopA2 := consumeInBackground(t, m, "t", func(context.Context, Message) error { groupA.Inc(); return nil }, WithGroup("a"))
	stopB := consumeInBackground(t, m, "t", func(context.Context, Message) error { groupB.Inc(); return nil }, WithQueueGroup("b"))
	defer stopA1()
	defer stopA2()
	defer stopB()

	for range 10 {
		_, err := m.Publish(context.Background(), "t", OutgoingMessage{Body: []byte("x")})
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return groupA.Load() == 10 && groupB.Load() == 10 }, time.Second, time.Millisecond)
}

func TestMemory_DelayAndClosed(t *testing.T) {
	m := NewMemory()
	got := make(chan struct{}, 1)
	cancel := consumeInBackground(t, m, "t", func(context.Context, Message) error {
		got <- struct{}{}
		return nil
	})
	defer cancel()

	start := time.Now()
	_, err := m.Publish(context.Background(), "t", OutgoingMessage{Delay: 20 * time.Millisecond})
	require.NoError(t, err)

	select {
	case <-got:
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("delayed message not delivered")
	}

	require.NoError(t, m.Close())
	_, err = m.Publish(context.Background(), "t", OutgoingMessage{})
	assert.Error(t, err)
}

func TestMemory_ConsumeRequiresHandler(t *testing.T) {
	assert.ErrorIs(t, NewMemory().Consume(context.Background(), "t", nil), ErrHandlerRequired)
}

func TestDispatch(t *testing.T) {
	newMsg := func(acks, nacks *atomic.Int64) *message {
		return &message{
			ack:  func(context.Context) error { acks.Inc(); return nil },
			nack: func(context.Context) error { nacks.Inc(); return nil },
		}
	}
	boom := errors.New("boom")

	tests := []struct {
		name      string
		handler   Handler
		autoAck   bool
		wantErr   bool
		wantAcks  int64
		wantNacks int64
	}{
		{name: "ok auto ack", handler: func(context.Context, Message) error { return nil }, autoAck: true, wantAcks: 1},
		{name: "error auto nack", handler: func(context.Context, Message) error { return boom }, autoAck: true, wantErr: true, wantNacks: 1},
		{name: "panic is recovered and nacked", handler: func(context.Context, Message) error { panic("x") }, autoAck: true, wantErr: true, wantNacks: 1},
		{name: "manual mode leaves message", handler: func(context.Context, Message) error { return nil }},
		{
			name: "handler ack wins over auto nack",
			handler: func(ctx context.Context, msg Message) error {
				_ = msg.Ack(ctx)
				return boom
			},
			autoAck:  true,
			wantErr:  true,
			wantAcks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acks, nacks atomic.Int64
			err := dispatch(context.Background(), "test", tt.handler, newMsg(&acks, &nacks), tt.autoAck)

			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
			assert.Equal(t, tt.wantAcks, acks.Load())
			assert.Equal(t, tt.wantNacks, nacks.Load())
		})
	}
}

func TestNSQEnvelope(t *testing.T) {
	raw, err := encodeNSQ(OutgoingMessage{Body: []byte(`{"a":1}`), Headers: map[string]string{"cID": "c"}})
	require.NoError(t, err)

	body, headers := decodeNSQ(raw)
	assert.Equal(t, `{"a":1}`, string(body))
	assert.Equal(t, "c", headers["cID"])

	body, headers = decodeNSQ([]byte(`plain text`))
	assert.Equal(t, "plain text", string(body))
	assert.Nil(t, headers)
}

func TestNewFromDriver(t *testing.T) {
	m, err := NewFromDriver("memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, m)

	_, err = NewFromDriver("pubsub", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver("kafka", FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)

	n, err := NewFromDriver("nsq", FactoryOptions{})
	require.NoError(t, err)
	_, err = n.Publish(context.Background(), "t", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrNSQProducerAddrRequired)
	assert.ErrorIs(t, n.Consume(context.Background(), "t", func(context.Context, Message) error { return nil }), ErrNSQConsumerAddrsRequired)
}
